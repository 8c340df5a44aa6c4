package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Name is a gd:name: a structured person name.
type Name struct {
	parsable.Parsable

	GivenName      string
	AdditionalName string
	FamilyName     string
	Prefix         string
	Suffix         string
	FullName       string
}

// NewName creates a structured name from given and family names.
func NewName(givenName, familyName string) *Name {
	return &Name{GivenName: givenName, FamilyName: familyName}
}

// ElementName implements parsable.XMLParsable.
func (n *Name) ElementName() (string, string) { return "gd", "name" }

// Namespaces implements parsable.XMLParsable.
func (n *Name) Namespaces(ns map[string]string) { namespaces(ns) }

// ParseXML dispatches the name's child elements.
func (n *Name) ParseXML(node *parsable.XMLNode) error {
	if node.InNamespace(parsable.NSGData) {
		switch node.Name {
		case "givenName":
			return parsable.StringContent(node, parsable.NoDupe, &n.GivenName)
		case "additionalName":
			return parsable.StringContent(node, parsable.NoDupe, &n.AdditionalName)
		case "familyName":
			return parsable.StringContent(node, parsable.NoDupe, &n.FamilyName)
		case "namePrefix":
			return parsable.StringContent(node, parsable.NoDupe, &n.Prefix)
		case "nameSuffix":
			return parsable.StringContent(node, parsable.NoDupe, &n.Suffix)
		case "fullName":
			return parsable.StringContent(node, parsable.NoDupe, &n.FullName)
		}
	}
	return n.Parsable.ParseXML(node)
}

// EmitXML implements parsable.XMLParsable.
func (n *Name) EmitXML(w *parsable.XMLWriter) {
	w.Element("gd:givenName", n.GivenName)
	w.Element("gd:additionalName", n.AdditionalName)
	w.Element("gd:familyName", n.FamilyName)
	w.Element("gd:namePrefix", n.Prefix)
	w.Element("gd:nameSuffix", n.Suffix)
	w.Element("gd:fullName", n.FullName)
}

// IsEmpty reports whether no component of the name is set.
func (n *Name) IsEmpty() bool {
	return n.GivenName == "" && n.AdditionalName == "" && n.FamilyName == "" &&
		n.Prefix == "" && n.Suffix == "" && n.FullName == ""
}
