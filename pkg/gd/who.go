package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Participant relation URIs for gd:who.
const (
	RelEventAttendee  = parsable.NSGData + "#event.attendee"
	RelEventOrganizer = parsable.NSGData + "#event.organizer"
	RelEventPerformer = parsable.NSGData + "#event.performer"
	RelEventSpeaker   = parsable.NSGData + "#event.speaker"
)

// Who is a gd:who: a person associated with an event.
type Who struct {
	parsable.Parsable

	Rel       string
	ValueText string
	Email     string
}

// NewWho creates a participant with the given relation and display value.
func NewWho(rel, valueText string) *Who {
	return &Who{Rel: rel, ValueText: valueText}
}

// ElementName implements parsable.XMLParsable.
func (p *Who) ElementName() (string, string) { return "gd", "who" }

// Namespaces implements parsable.XMLParsable.
func (p *Who) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the participant's attributes.
func (p *Who) PreParseXML(root *parsable.XMLNode) error {
	p.Rel = root.Attr("rel")
	p.ValueText = root.Attr("valueString")
	p.Email = root.Attr("email")
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (p *Who) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("email", p.Email)
	w.OptionalAttr("rel", p.Rel)
	w.OptionalAttr("valueString", p.ValueText)
}

// Where is a gd:where: a place associated with an event.
type Where struct {
	parsable.Parsable

	Rel       string
	ValueText string
	Label     string
}

// NewWhere creates a place with the given relation and display value.
func NewWhere(rel, valueText string) *Where {
	return &Where{Rel: rel, ValueText: valueText}
}

// ElementName implements parsable.XMLParsable.
func (p *Where) ElementName() (string, string) { return "gd", "where" }

// Namespaces implements parsable.XMLParsable.
func (p *Where) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the place's attributes.
func (p *Where) PreParseXML(root *parsable.XMLNode) error {
	p.Rel = root.Attr("rel")
	p.ValueText = root.Attr("valueString")
	p.Label = root.Attr("label")
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (p *Where) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("label", p.Label)
	w.OptionalAttr("rel", p.Rel)
	w.OptionalAttr("valueString", p.ValueText)
}
