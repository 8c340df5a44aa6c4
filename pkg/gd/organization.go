package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Organization is a gd:organization: an employer or affiliation.
type Organization struct {
	parsable.Parsable

	Name           string
	Title          string
	Department     string
	JobDescription string
	Symbol         string
	Rel            string
	Label          string
	Primary        bool
}

// NewOrganization creates an organization with the given name and relation.
func NewOrganization(name, rel string) *Organization {
	return &Organization{Name: name, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (o *Organization) ElementName() (string, string) { return "gd", "organization" }

// Namespaces implements parsable.XMLParsable.
func (o *Organization) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the organization's attributes.
func (o *Organization) PreParseXML(root *parsable.XMLNode) error {
	o.Rel = root.Attr("rel")
	o.Label = root.Attr("label")
	primary, err := parsable.BoolAttr(root, "primary", parsable.None)
	if err != nil {
		return err
	}
	o.Primary = primary
	return nil
}

// ParseXML dispatches the organization's child elements.
func (o *Organization) ParseXML(node *parsable.XMLNode) error {
	if node.InNamespace(parsable.NSGData) {
		switch node.Name {
		case "orgName":
			return parsable.StringContent(node, parsable.NoDupe, &o.Name)
		case "orgTitle":
			return parsable.StringContent(node, parsable.NoDupe, &o.Title)
		case "orgDepartment":
			return parsable.StringContent(node, parsable.NoDupe, &o.Department)
		case "orgJobDescription":
			return parsable.StringContent(node, parsable.NoDupe, &o.JobDescription)
		case "orgSymbol":
			return parsable.StringContent(node, parsable.NoDupe, &o.Symbol)
		}
	}
	return o.Parsable.ParseXML(node)
}

// PreEmitXML implements parsable.XMLParsable.
func (o *Organization) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("rel", o.Rel)
	w.OptionalAttr("label", o.Label)
	w.BoolAttr("primary", o.Primary)
}

// EmitXML implements parsable.XMLParsable.
func (o *Organization) EmitXML(w *parsable.XMLWriter) {
	w.Element("gd:orgName", o.Name)
	w.Element("gd:orgTitle", o.Title)
	w.Element("gd:orgDepartment", o.Department)
	w.Element("gd:orgJobDescription", o.JobDescription)
	w.Element("gd:orgSymbol", o.Symbol)
}

// Equal reports whether two organizations have the same name and title.
func (o *Organization) Equal(other *Organization) bool {
	return o.Name == other.Name && o.Title == other.Title
}
