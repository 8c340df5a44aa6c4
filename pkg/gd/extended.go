package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// ExtendedProperty is a gd:extendedProperty: an application-defined
// name/value pair attached to an entity. Entities expose their extended
// properties as a typed string map and serialize through this type.
type ExtendedProperty struct {
	parsable.Parsable

	Name  string // required
	Value string
}

// NewExtendedProperty creates a property with the given name and value.
func NewExtendedProperty(name, value string) *ExtendedProperty {
	return &ExtendedProperty{Name: name, Value: value}
}

// ElementName implements parsable.XMLParsable.
func (p *ExtendedProperty) ElementName() (string, string) { return "gd", "extendedProperty" }

// Namespaces implements parsable.XMLParsable.
func (p *ExtendedProperty) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the property's attributes. A value may arrive either
// as the value attribute or as element content.
func (p *ExtendedProperty) PreParseXML(root *parsable.XMLNode) error {
	name, err := parsable.RequiredAttr(root, "name")
	if err != nil {
		return err
	}
	p.Name = name
	if v, ok := root.LookupAttr("value"); ok {
		p.Value = v
	} else {
		p.Value = root.Text
	}
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (p *ExtendedProperty) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("name", p.Name)
	w.OptionalAttr("value", p.Value)
}
