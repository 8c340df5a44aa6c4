package parsable

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

// Options control the constraints a typed extractor enforces. Each helper
// checks exactly the constraints it is handed.
type Options uint

const (
	// None applies no constraints.
	None Options = 0

	// Required rejects an element or member with empty content.
	Required Options = 1 << iota

	// NoDupe rejects a second occurrence of a singleton, detected by the
	// destination already being populated.
	NoDupe

	// DefaultTrue makes absent boolean attributes parse as true.
	DefaultTrue
)

// Error constructors. Each carries the element or member name involved so
// failures can be traced back to the document.

// ErrRequiredContentMissing reports an element or member that must have
// content but does not.
func ErrRequiredContentMissing(name string) error {
	return &errors.ParseError{Kind: errors.ParseMissingContent, Element: name}
}

// ErrRequiredAttrMissing reports a missing required attribute.
func ErrRequiredAttrMissing(element, attr string) error {
	return &errors.ParseError{Kind: errors.ParseMissingAttribute, Element: element + "@" + attr}
}

// ErrDuplicateElement reports a second occurrence of a singleton element.
func ErrDuplicateElement(name string) error {
	return &errors.ParseError{Kind: errors.ParseDuplicateElement, Element: name}
}

// ErrNotISO8601 reports a malformed date or datetime value.
func ErrNotISO8601(name, value string) error {
	return &errors.ParseError{Kind: errors.ParseNotISO8601, Element: name, Value: value}
}

// ErrUnknownPropertyValue reports a value outside a property's enumeration.
func ErrUnknownPropertyValue(name, value string) error {
	return &errors.ParseError{Kind: errors.ParseUnknownValue, Element: name, Value: value}
}

// ErrRequiredElementMissing reports a required child element that never
// appeared under its parent.
func ErrRequiredElementMissing(name, parent string) error {
	return &errors.ParseError{Kind: errors.ParseMissingElement, Element: parent + "/" + name}
}

// StringContent extracts an element's character data into dest.
func StringContent(node *XMLNode, opts Options, dest *string) error {
	if opts&NoDupe != 0 && *dest != "" {
		return ErrDuplicateElement(node.QName())
	}
	if opts&Required != 0 && node.Text == "" {
		return ErrRequiredContentMissing(node.QName())
	}
	*dest = node.Text
	return nil
}

// TimeContent extracts an element's character data as a full ISO-8601
// datetime into dest.
func TimeContent(node *XMLNode, opts Options, dest *time.Time) error {
	if opts&NoDupe != 0 && !dest.IsZero() {
		return ErrDuplicateElement(node.QName())
	}
	if node.Text == "" {
		if opts&Required != 0 {
			return ErrRequiredContentMissing(node.QName())
		}
		return nil
	}
	t, err := ParseISO8601(node.Text)
	if err != nil {
		return ErrNotISO8601(node.QName(), node.Text)
	}
	*dest = t
	return nil
}

// DateContent extracts an element's character data as a bare ISO-8601 date
// into dest.
func DateContent(node *XMLNode, opts Options, dest *time.Time) error {
	if opts&NoDupe != 0 && !dest.IsZero() {
		return ErrDuplicateElement(node.QName())
	}
	if node.Text == "" {
		if opts&Required != 0 {
			return ErrRequiredContentMissing(node.QName())
		}
		return nil
	}
	t, err := ParseDate(node.Text)
	if err != nil {
		return ErrNotISO8601(node.QName(), node.Text)
	}
	*dest = t
	return nil
}

// Int64Content extracts an element's character data as an integer into dest.
func Int64Content(node *XMLNode, opts Options, dest *int64) error {
	if opts&NoDupe != 0 && *dest != 0 {
		return ErrDuplicateElement(node.QName())
	}
	if node.Text == "" {
		if opts&Required != 0 {
			return ErrRequiredContentMissing(node.QName())
		}
		return nil
	}
	v, err := strconv.ParseInt(node.Text, 10, 64)
	if err != nil {
		return ErrUnknownPropertyValue(node.QName(), node.Text)
	}
	*dest = v
	return nil
}

// IntContent extracts an element's character data as an int into dest.
func IntContent(node *XMLNode, opts Options, dest *int) error {
	var v int64
	if opts&NoDupe != 0 && *dest != 0 {
		return ErrDuplicateElement(node.QName())
	}
	if err := Int64Content(node, opts&^NoDupe, &v); err != nil {
		return err
	}
	*dest = int(v)
	return nil
}

// RequiredAttr extracts an attribute that must be present and non-empty.
func RequiredAttr(node *XMLNode, attr string) (string, error) {
	v, ok := node.LookupAttr(attr)
	if !ok || v == "" {
		return "", ErrRequiredAttrMissing(node.QName(), attr)
	}
	return v, nil
}

// BoolAttr extracts a boolean attribute, applying DefaultTrue when absent.
func BoolAttr(node *XMLNode, attr string, opts Options) (bool, error) {
	v, ok := node.LookupAttr(attr)
	if !ok {
		return opts&DefaultTrue != 0, nil
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, ErrUnknownPropertyValue(node.QName()+"@"+attr, v)
}

// TimeAttr extracts an ISO-8601 datetime attribute.
func TimeAttr(node *XMLNode, attr string, opts Options) (time.Time, error) {
	v, ok := node.LookupAttr(attr)
	if !ok || v == "" {
		if opts&Required != 0 {
			return time.Time{}, ErrRequiredAttrMissing(node.QName(), attr)
		}
		return time.Time{}, nil
	}
	t, err := ParseISO8601(v)
	if err != nil {
		return time.Time{}, ErrNotISO8601(node.QName()+"@"+attr, v)
	}
	return t, nil
}

// ObjectFromElement parses a child element subtree as the given entity and
// hands it to add. Used for repeated children such as links and categories.
func ObjectFromElement[T XMLParsable](node *XMLNode, obj T, add func(T)) error {
	if err := ParseNode(node, obj); err != nil {
		return err
	}
	add(obj)
	return nil
}

// StringFromJSON extracts a string member into dest.
func StringFromJSON(member string, raw json.RawMessage, opts Options, dest *string) error {
	if opts&NoDupe != 0 && *dest != "" {
		return ErrDuplicateElement(member)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.WrapParse("json member "+member, err)
	}
	if opts&Required != 0 && v == "" {
		return ErrRequiredContentMissing(member)
	}
	*dest = v
	return nil
}

// BoolFromJSON extracts a boolean member into dest.
func BoolFromJSON(member string, raw json.RawMessage, opts Options, dest *bool) error {
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.WrapParse("json member "+member, err)
	}
	*dest = v
	return nil
}

// IntFromJSON extracts an integer member into dest.
func IntFromJSON(member string, raw json.RawMessage, opts Options, dest *int) error {
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.WrapParse("json member "+member, err)
	}
	*dest = v
	return nil
}

// TimeFromJSON extracts an ISO-8601 datetime member into dest.
func TimeFromJSON(member string, raw json.RawMessage, opts Options, dest *time.Time) error {
	if opts&NoDupe != 0 && !dest.IsZero() {
		return ErrDuplicateElement(member)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.WrapParse("json member "+member, err)
	}
	t, err := ParseISO8601(v)
	if err != nil {
		return ErrNotISO8601(member, v)
	}
	*dest = t
	return nil
}

// ParseISO8601 parses a full ISO-8601 datetime, accepting fractional
// seconds and numeric zone offsets.
func ParseISO8601(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewParseError(errors.ParseNotISO8601, s)
}

// FormatISO8601 formats a datetime as UTC ISO-8601 with second precision,
// the form the GData services emit.
func FormatISO8601(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// ParseDate parses a bare ISO-8601 date (no time-of-day).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.NewParseError(errors.ParseNotISO8601, s)
	}
	return t, nil
}

// FormatDate formats a bare ISO-8601 date.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
