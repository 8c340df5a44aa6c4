package calendar

import (
	"strconv"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/gd"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// EventKindTerm identifies an event entry's schema.
const EventKindTerm = parsable.NSGData + "#event"

// Event status values.
const (
	EventStatusConfirmed = parsable.NSGData + "#event.confirmed"
	EventStatusTentative = parsable.NSGData + "#event.tentative"
	EventStatusCanceled  = parsable.NSGData + "#event.canceled"
)

// Event visibility values.
const (
	EventVisibilityDefault      = parsable.NSGData + "#event.default"
	EventVisibilityPublic       = parsable.NSGData + "#event.public"
	EventVisibilityPrivate      = parsable.NSGData + "#event.private"
	EventVisibilityConfidential = parsable.NSGData + "#event.confidential"
)

// Event transparency values.
const (
	EventTransparencyOpaque      = parsable.NSGData + "#event.opaque"
	EventTransparencyTransparent = parsable.NSGData + "#event.transparent"
)

// Event is a calendar event entry.
type Event struct {
	atom.Entry

	Edited       time.Time
	Status       string
	Visibility   string
	Transparency string

	// UID is the event's iCalendar UID; Sequence its iCalendar
	// revision number.
	UID      string
	Sequence int

	GuestsCanModify       bool
	GuestsCanInviteOthers bool
	GuestsCanSeeGuests    bool
	AnyoneCanAddSelf      bool

	// Recurrence holds the event's RFC 5545 recurrence properties
	// (RRULE, EXRULE, RDATE, EXDATE), newline-separated.
	Recurrence string

	Times  []*gd.When
	People []*gd.Who
	Places []*gd.Where
}

// NewEvent creates an event with the given title.
func NewEvent(title string) *Event {
	e := &Event{Entry: atom.Entry{Title: title}}
	e.SetKind(atom.KindScheme, EventKindTerm)
	return e
}

// Namespaces implements parsable.XMLParsable.
func (e *Event) Namespaces(ns map[string]string) {
	e.Entry.Namespaces(ns)
	ns["gCal"] = parsable.NSGCal
	ns["app"] = parsable.NSApp
}

// ParseXML dispatches the event's child elements, delegating Atom core
// elements to the entry.
func (e *Event) ParseXML(node *parsable.XMLNode) error {
	switch {
	case node.InNamespace(parsable.NSGData):
		switch node.Name {
		case "eventStatus":
			return valueAttr(node, &e.Status)
		case "visibility":
			return valueAttr(node, &e.Visibility)
		case "transparency":
			return valueAttr(node, &e.Transparency)
		case "recurrence":
			return parsable.StringContent(node, parsable.NoDupe, &e.Recurrence)
		case "when":
			return parsable.ObjectFromElement(node, &gd.When{}, func(w *gd.When) {
				e.Times = append(e.Times, w)
			})
		case "who":
			return parsable.ObjectFromElement(node, &gd.Who{}, func(w *gd.Who) {
				e.People = append(e.People, w)
			})
		case "where":
			return parsable.ObjectFromElement(node, &gd.Where{}, func(w *gd.Where) {
				e.Places = append(e.Places, w)
			})
		}
	case node.InNamespace(parsable.NSGCal):
		switch node.Name {
		case "uid":
			return valueAttr(node, &e.UID)
		case "sequence":
			value, err := parsable.RequiredAttr(node, "value")
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return parsable.ErrUnknownPropertyValue(node.QName(), value)
			}
			e.Sequence = n
			return nil
		case "guestsCanModify":
			return boolValueAttr(node, &e.GuestsCanModify)
		case "guestsCanInviteOthers":
			return boolValueAttr(node, &e.GuestsCanInviteOthers)
		case "guestsCanSeeGuests":
			return boolValueAttr(node, &e.GuestsCanSeeGuests)
		case "anyoneCanAddSelf":
			return boolValueAttr(node, &e.AnyoneCanAddSelf)
		}
	case node.InNamespace(parsable.NSApp):
		if node.Name == "edited" {
			return parsable.TimeContent(node, parsable.NoDupe, &e.Edited)
		}
	}
	return e.Entry.ParseXML(node)
}

// EmitXML implements parsable.XMLParsable.
func (e *Event) EmitXML(w *parsable.XMLWriter) {
	e.Entry.EmitXML(w)

	emitValueElement(w, "gd:eventStatus", e.Status)
	emitValueElement(w, "gd:visibility", e.Visibility)
	emitValueElement(w, "gd:transparency", e.Transparency)
	emitValueElement(w, "gCal:uid", e.UID)
	if e.Sequence > 0 {
		emitValueElement(w, "gCal:sequence", strconv.Itoa(e.Sequence))
	}
	emitValueElement(w, "gCal:guestsCanModify", strconv.FormatBool(e.GuestsCanModify))
	emitValueElement(w, "gCal:guestsCanInviteOthers", strconv.FormatBool(e.GuestsCanInviteOthers))
	emitValueElement(w, "gCal:guestsCanSeeGuests", strconv.FormatBool(e.GuestsCanSeeGuests))
	emitValueElement(w, "gCal:anyoneCanAddSelf", strconv.FormatBool(e.AnyoneCanAddSelf))
	if e.Recurrence != "" {
		w.Element("gd:recurrence", e.Recurrence)
	}
	for _, t := range e.Times {
		parsable.EmitChild(t, w)
	}
	for _, p := range e.People {
		parsable.EmitChild(p, w)
	}
	for _, p := range e.Places {
		parsable.EmitChild(p, w)
	}
}

// AddTime appends a time span to the event.
func (e *Event) AddTime(when *gd.When) {
	e.Times = append(e.Times, when)
}

// AddPerson appends a participant to the event.
func (e *Event) AddPerson(who *gd.Who) {
	e.People = append(e.People, who)
}

// AddPlace appends a location to the event.
func (e *Event) AddPlace(where *gd.Where) {
	e.Places = append(e.Places, where)
}

// IsRecurring reports whether the event has a recurrence or expands
// another event's.
func (e *Event) IsRecurring() bool {
	return e.Recurrence != ""
}

// valueAttr reads the element's required value attribute.
func valueAttr(node *parsable.XMLNode, dest *string) error {
	value, err := parsable.RequiredAttr(node, "value")
	if err != nil {
		return err
	}
	*dest = value
	return nil
}

// boolValueAttr reads the element's boolean value attribute.
func boolValueAttr(node *parsable.XMLNode, dest *bool) error {
	value, err := parsable.BoolAttr(node, "value", parsable.None)
	if err != nil {
		return err
	}
	*dest = value
	return nil
}

// emitValueElement writes an empty element carrying a value attribute.
func emitValueElement(w *parsable.XMLWriter, qname, value string) {
	if value == "" {
		return
	}
	w.Raw("<" + qname)
	w.Attr("value", value)
	w.Raw("/>")
}
