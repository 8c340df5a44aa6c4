package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// EmailAddress is a gd:email contact point.
type EmailAddress struct {
	parsable.Parsable

	Address     string // required
	Rel         string // RelHome, RelWork, RelOther, or a custom URI
	Label       string
	DisplayName string
	Primary     bool
}

// NewEmailAddress creates an email address with the given address and
// relation.
func NewEmailAddress(address, rel string) *EmailAddress {
	return &EmailAddress{Address: address, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (e *EmailAddress) ElementName() (string, string) { return "gd", "email" }

// Namespaces implements parsable.XMLParsable.
func (e *EmailAddress) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the email's attributes.
func (e *EmailAddress) PreParseXML(root *parsable.XMLNode) error {
	address, err := parsable.RequiredAttr(root, "address")
	if err != nil {
		return err
	}
	e.Address = address
	e.Rel = root.Attr("rel")
	e.Label = root.Attr("label")
	e.DisplayName = root.Attr("displayName")
	primary, err := parsable.BoolAttr(root, "primary", parsable.None)
	if err != nil {
		return err
	}
	e.Primary = primary
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (e *EmailAddress) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("address", e.Address)
	w.OptionalAttr("rel", e.Rel)
	w.OptionalAttr("label", e.Label)
	w.OptionalAttr("displayName", e.DisplayName)
	w.BoolAttr("primary", e.Primary)
}

// Equal reports whether two email addresses identify the same address.
func (e *EmailAddress) Equal(other *EmailAddress) bool {
	return e.Address == other.Address
}
