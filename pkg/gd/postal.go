package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// PostalAddress is a gd:structuredPostalAddress.
type PostalAddress struct {
	parsable.Parsable

	Street           string
	POBox            string
	Neighborhood     string
	City             string
	Region           string
	Postcode         string
	Country          string
	CountryCode      string
	FormattedAddress string

	Rel     string
	Label   string
	Primary bool
}

// NewPostalAddress creates a postal address with the given relation.
func NewPostalAddress(rel string) *PostalAddress {
	return &PostalAddress{Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (p *PostalAddress) ElementName() (string, string) { return "gd", "structuredPostalAddress" }

// Namespaces implements parsable.XMLParsable.
func (p *PostalAddress) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the address's attributes.
func (p *PostalAddress) PreParseXML(root *parsable.XMLNode) error {
	p.Rel = root.Attr("rel")
	p.Label = root.Attr("label")
	primary, err := parsable.BoolAttr(root, "primary", parsable.None)
	if err != nil {
		return err
	}
	p.Primary = primary
	return nil
}

// ParseXML dispatches the address's child elements.
func (p *PostalAddress) ParseXML(node *parsable.XMLNode) error {
	if node.InNamespace(parsable.NSGData) {
		switch node.Name {
		case "street":
			return parsable.StringContent(node, parsable.NoDupe, &p.Street)
		case "pobox":
			return parsable.StringContent(node, parsable.NoDupe, &p.POBox)
		case "neighborhood":
			return parsable.StringContent(node, parsable.NoDupe, &p.Neighborhood)
		case "city":
			return parsable.StringContent(node, parsable.NoDupe, &p.City)
		case "region":
			return parsable.StringContent(node, parsable.NoDupe, &p.Region)
		case "postcode":
			return parsable.StringContent(node, parsable.NoDupe, &p.Postcode)
		case "country":
			p.CountryCode = node.Attr("code")
			return parsable.StringContent(node, parsable.NoDupe, &p.Country)
		case "formattedAddress":
			return parsable.StringContent(node, parsable.NoDupe, &p.FormattedAddress)
		}
	}
	return p.Parsable.ParseXML(node)
}

// PreEmitXML implements parsable.XMLParsable.
func (p *PostalAddress) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("rel", p.Rel)
	w.OptionalAttr("label", p.Label)
	w.BoolAttr("primary", p.Primary)
}

// EmitXML implements parsable.XMLParsable.
func (p *PostalAddress) EmitXML(w *parsable.XMLWriter) {
	w.Element("gd:street", p.Street)
	w.Element("gd:pobox", p.POBox)
	w.Element("gd:neighborhood", p.Neighborhood)
	w.Element("gd:city", p.City)
	w.Element("gd:region", p.Region)
	w.Element("gd:postcode", p.Postcode)
	if p.Country != "" {
		w.Raw("<gd:country")
		w.OptionalAttr("code", p.CountryCode)
		w.Raw(">")
		w.Text(p.Country)
		w.Raw("</gd:country>")
	}
	w.Element("gd:formattedAddress", p.FormattedAddress)
}
