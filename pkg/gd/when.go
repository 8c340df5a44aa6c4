package gd

import (
	"strconv"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// When is a gd:when: an event time span. All-day events carry bare dates;
// timed events carry full datetimes.
type When struct {
	parsable.Parsable

	Start     time.Time // required
	End       time.Time
	IsDate    bool // start and end are bare dates
	ValueText string

	Reminders []*Reminder
}

// NewWhen creates a time span.
func NewWhen(start, end time.Time, isDate bool) *When {
	return &When{Start: start, End: end, IsDate: isDate}
}

// ElementName implements parsable.XMLParsable.
func (w *When) ElementName() (string, string) { return "gd", "when" }

// Namespaces implements parsable.XMLParsable.
func (w *When) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the span's attributes.
func (w *When) PreParseXML(root *parsable.XMLNode) error {
	start, ok := root.LookupAttr("startTime")
	if !ok {
		return parsable.ErrRequiredAttrMissing(root.QName(), "startTime")
	}
	if t, err := parsable.ParseDate(start); err == nil {
		w.Start = t
		w.IsDate = true
	} else if t, err := parsable.ParseISO8601(start); err == nil {
		w.Start = t
	} else {
		return parsable.ErrNotISO8601(root.QName()+"@startTime", start)
	}

	if end, ok := root.LookupAttr("endTime"); ok {
		var t time.Time
		var err error
		if w.IsDate {
			t, err = parsable.ParseDate(end)
		} else {
			t, err = parsable.ParseISO8601(end)
		}
		if err != nil {
			return parsable.ErrNotISO8601(root.QName()+"@endTime", end)
		}
		w.End = t
	}
	w.ValueText = root.Attr("valueString")
	return nil
}

// ParseXML dispatches the span's child elements.
func (w *When) ParseXML(node *parsable.XMLNode) error {
	if node.InNamespace(parsable.NSGData) && node.Name == "reminder" {
		return parsable.ObjectFromElement(node, &Reminder{}, func(r *Reminder) {
			w.Reminders = append(w.Reminders, r)
		})
	}
	return w.Parsable.ParseXML(node)
}

// PreEmitXML implements parsable.XMLParsable.
func (w *When) PreEmitXML(xw *parsable.XMLWriter) {
	if w.IsDate {
		xw.Attr("startTime", parsable.FormatDate(w.Start))
		if !w.End.IsZero() {
			xw.Attr("endTime", parsable.FormatDate(w.End))
		}
	} else {
		xw.Attr("startTime", parsable.FormatISO8601(w.Start))
		if !w.End.IsZero() {
			xw.Attr("endTime", parsable.FormatISO8601(w.End))
		}
	}
	xw.OptionalAttr("valueString", w.ValueText)
}

// EmitXML implements parsable.XMLParsable.
func (w *When) EmitXML(xw *parsable.XMLWriter) {
	for _, r := range w.Reminders {
		parsable.EmitChild(r, xw)
	}
}

// Reminder is a gd:reminder attached to an event time span.
type Reminder struct {
	parsable.Parsable

	Method       string // "alert", "email", "sms"
	Minutes      int
	AbsoluteTime time.Time
}

// ElementName implements parsable.XMLParsable.
func (r *Reminder) ElementName() (string, string) { return "gd", "reminder" }

// Namespaces implements parsable.XMLParsable.
func (r *Reminder) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the reminder's attributes, normalising days and hours
// to minutes.
func (r *Reminder) PreParseXML(root *parsable.XMLNode) error {
	r.Method = root.Attr("method")
	if v, ok := root.LookupAttr("absoluteTime"); ok {
		t, err := parsable.ParseISO8601(v)
		if err != nil {
			return parsable.ErrNotISO8601(root.QName()+"@absoluteTime", v)
		}
		r.AbsoluteTime = t
	}
	for attr, scale := range map[string]int{"minutes": 1, "hours": 60, "days": 24 * 60} {
		if v, ok := root.LookupAttr(attr); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return parsable.ErrUnknownPropertyValue(root.QName()+"@"+attr, v)
			}
			r.Minutes = n * scale
		}
	}
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (r *Reminder) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("method", r.Method)
	if !r.AbsoluteTime.IsZero() {
		w.Attr("absoluteTime", parsable.FormatISO8601(r.AbsoluteTime))
	} else if r.Minutes > 0 {
		w.Attr("minutes", strconv.Itoa(r.Minutes))
	}
}
