// Package gcontact provides the gContact namespace extensions a Contact
// entry carries beyond the GData core properties: jots, relations,
// websites, events, calendar links, external ids, and languages.
package gcontact

import (
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

func namespaces(ns map[string]string) {
	ns["gContact"] = parsable.NSGContact
}

// Jot is a gContact:jot: a free-form note about a contact. The relation is
// a bare token ("home", "work", "other", "keywords", "user").
type Jot struct {
	parsable.Parsable

	Content string
	Rel     string // required
}

// NewJot creates a jot with the given content and relation.
func NewJot(content, rel string) *Jot {
	return &Jot{Content: content, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (j *Jot) ElementName() (string, string) { return "gContact", "jot" }

// Namespaces implements parsable.XMLParsable.
func (j *Jot) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the jot's attributes and content.
func (j *Jot) PreParseXML(root *parsable.XMLNode) error {
	rel, err := parsable.RequiredAttr(root, "rel")
	if err != nil {
		return err
	}
	j.Rel = rel
	j.Content = root.Text
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (j *Jot) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("rel", j.Rel)
}

// EmitXML implements parsable.XMLParsable.
func (j *Jot) EmitXML(w *parsable.XMLWriter) {
	w.Text(j.Content)
}

// Relation is a gContact:relation: a named relationship to another person.
type Relation struct {
	parsable.Parsable

	Name  string
	Rel   string
	Label string
}

// NewRelation creates a relation with the given person name and relation
// token.
func NewRelation(name, rel string) *Relation {
	return &Relation{Name: name, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (r *Relation) ElementName() (string, string) { return "gContact", "relation" }

// Namespaces implements parsable.XMLParsable.
func (r *Relation) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the relation's attributes and content. Exactly one of
// rel and label must be present.
func (r *Relation) PreParseXML(root *parsable.XMLNode) error {
	r.Rel = root.Attr("rel")
	r.Label = root.Attr("label")
	if r.Rel == "" && r.Label == "" {
		return parsable.ErrRequiredAttrMissing(root.QName(), "rel")
	}
	r.Name = root.Text
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (r *Relation) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("rel", r.Rel)
	w.OptionalAttr("label", r.Label)
}

// EmitXML implements parsable.XMLParsable.
func (r *Relation) EmitXML(w *parsable.XMLWriter) {
	w.Text(r.Name)
}

// Website is a gContact:website link.
type Website struct {
	parsable.Parsable

	Href    string // required
	Rel     string // required
	Label   string
	Primary bool
}

// NewWebsite creates a website with the given href and relation token.
func NewWebsite(href, rel string) *Website {
	return &Website{Href: href, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (s *Website) ElementName() (string, string) { return "gContact", "website" }

// Namespaces implements parsable.XMLParsable.
func (s *Website) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the website's attributes.
func (s *Website) PreParseXML(root *parsable.XMLNode) error {
	href, err := parsable.RequiredAttr(root, "href")
	if err != nil {
		return err
	}
	rel, err := parsable.RequiredAttr(root, "rel")
	if err != nil {
		return err
	}
	s.Href = href
	s.Rel = rel
	s.Label = root.Attr("label")
	primary, err := parsable.BoolAttr(root, "primary", parsable.None)
	if err != nil {
		return err
	}
	s.Primary = primary
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (s *Website) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("href", s.Href)
	w.Attr("rel", s.Rel)
	w.OptionalAttr("label", s.Label)
	w.BoolAttr("primary", s.Primary)
}

// Event is a gContact:event: a dated event such as an anniversary.
type Event struct {
	parsable.Parsable

	Date  time.Time // required; bare date
	Rel   string
	Label string
}

// NewEvent creates an event on the given date with the given relation
// token.
func NewEvent(date time.Time, rel string) *Event {
	return &Event{Date: date, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (e *Event) ElementName() (string, string) { return "gContact", "event" }

// Namespaces implements parsable.XMLParsable.
func (e *Event) Namespaces(ns map[string]string) {
	namespaces(ns)
	ns["gd"] = parsable.NSGData
}

// PreParseXML reads the event's attributes. Exactly one of rel and label
// must be present.
func (e *Event) PreParseXML(root *parsable.XMLNode) error {
	e.Rel = root.Attr("rel")
	e.Label = root.Attr("label")
	if e.Rel == "" && e.Label == "" {
		return parsable.ErrRequiredAttrMissing(root.QName(), "rel")
	}
	return nil
}

// ParseXML reads the event's gd:when child.
func (e *Event) ParseXML(node *parsable.XMLNode) error {
	if node.InNamespace(parsable.NSGData) && node.Name == "when" {
		start, err := parsable.RequiredAttr(node, "startTime")
		if err != nil {
			return err
		}
		t, err := parsable.ParseDate(start)
		if err != nil {
			return parsable.ErrNotISO8601(node.QName()+"@startTime", start)
		}
		e.Date = t
		return nil
	}
	return e.Parsable.ParseXML(node)
}

// PostParseXML verifies the required date was present.
func (e *Event) PostParseXML() error {
	if e.Date.IsZero() {
		return parsable.ErrRequiredElementMissing("gd:when", "gContact:event")
	}
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (e *Event) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("rel", e.Rel)
	w.OptionalAttr("label", e.Label)
}

// EmitXML implements parsable.XMLParsable.
func (e *Event) EmitXML(w *parsable.XMLWriter) {
	w.Raw("<gd:when")
	w.Attr("startTime", parsable.FormatDate(e.Date))
	w.Raw("/>")
}

// Calendar is a gContact:calendarLink.
type Calendar struct {
	parsable.Parsable

	Href    string // required
	Rel     string
	Label   string
	Primary bool
}

// NewCalendar creates a calendar link with the given href and relation
// token.
func NewCalendar(href, rel string) *Calendar {
	return &Calendar{Href: href, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (c *Calendar) ElementName() (string, string) { return "gContact", "calendarLink" }

// Namespaces implements parsable.XMLParsable.
func (c *Calendar) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the link's attributes. Exactly one of rel and label
// must be present.
func (c *Calendar) PreParseXML(root *parsable.XMLNode) error {
	href, err := parsable.RequiredAttr(root, "href")
	if err != nil {
		return err
	}
	c.Href = href
	c.Rel = root.Attr("rel")
	c.Label = root.Attr("label")
	if c.Rel == "" && c.Label == "" {
		return parsable.ErrRequiredAttrMissing(root.QName(), "rel")
	}
	primary, err := parsable.BoolAttr(root, "primary", parsable.None)
	if err != nil {
		return err
	}
	c.Primary = primary
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (c *Calendar) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("href", c.Href)
	w.OptionalAttr("rel", c.Rel)
	w.OptionalAttr("label", c.Label)
	w.BoolAttr("primary", c.Primary)
}

// ExternalID is a gContact:externalId: an identifier for the contact in an
// external system.
type ExternalID struct {
	parsable.Parsable

	Value string // required
	Rel   string
	Label string
}

// NewExternalID creates an external id with the given value and relation
// token.
func NewExternalID(value, rel string) *ExternalID {
	return &ExternalID{Value: value, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (x *ExternalID) ElementName() (string, string) { return "gContact", "externalId" }

// Namespaces implements parsable.XMLParsable.
func (x *ExternalID) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the id's attributes.
func (x *ExternalID) PreParseXML(root *parsable.XMLNode) error {
	value, ok := root.LookupAttr("value")
	if !ok {
		return parsable.ErrRequiredAttrMissing(root.QName(), "value")
	}
	x.Value = value
	x.Rel = root.Attr("rel")
	x.Label = root.Attr("label")
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (x *ExternalID) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("value", x.Value)
	w.OptionalAttr("rel", x.Rel)
	w.OptionalAttr("label", x.Label)
}

// Language is a gContact:language the contact speaks. Either a code or a
// free-text label is present.
type Language struct {
	parsable.Parsable

	Code  string
	Label string
}

// ElementName implements parsable.XMLParsable.
func (l *Language) ElementName() (string, string) { return "gContact", "language" }

// Namespaces implements parsable.XMLParsable.
func (l *Language) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the language's attributes. Exactly one of code and
// label must be present.
func (l *Language) PreParseXML(root *parsable.XMLNode) error {
	l.Code = root.Attr("code")
	l.Label = root.Attr("label")
	switch {
	case l.Code == "" && l.Label == "":
		return parsable.ErrRequiredAttrMissing(root.QName(), "code")
	case l.Code != "" && l.Label != "":
		return parsable.ErrUnknownPropertyValue(root.QName(), "both code and label present")
	}
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (l *Language) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("code", l.Code)
	w.OptionalAttr("label", l.Label)
}
