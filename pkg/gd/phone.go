package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Phone number relation URIs beyond the shared home/work/other set.
const (
	RelMobile   = parsable.NSGData + "#mobile"
	RelFax      = parsable.NSGData + "#fax"
	RelPager    = parsable.NSGData + "#pager"
	RelHomeFax  = parsable.NSGData + "#home_fax"
	RelWorkFax  = parsable.NSGData + "#work_fax"
	RelCallback = parsable.NSGData + "#callback"
)

// PhoneNumber is a gd:phoneNumber contact point. The number itself is the
// element's text content; URI is its optional tel URI form.
type PhoneNumber struct {
	parsable.Parsable

	Number  string // required; element content
	URI     string
	Rel     string
	Label   string
	Primary bool
}

// NewPhoneNumber creates a phone number with the given number and relation.
func NewPhoneNumber(number, rel string) *PhoneNumber {
	return &PhoneNumber{Number: number, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (p *PhoneNumber) ElementName() (string, string) { return "gd", "phoneNumber" }

// Namespaces implements parsable.XMLParsable.
func (p *PhoneNumber) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the number's attributes and content.
func (p *PhoneNumber) PreParseXML(root *parsable.XMLNode) error {
	if root.Text == "" {
		return parsable.ErrRequiredContentMissing(root.QName())
	}
	p.Number = root.Text
	p.URI = root.Attr("uri")
	p.Rel = root.Attr("rel")
	p.Label = root.Attr("label")
	primary, err := parsable.BoolAttr(root, "primary", parsable.None)
	if err != nil {
		return err
	}
	p.Primary = primary
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (p *PhoneNumber) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("uri", p.URI)
	w.OptionalAttr("rel", p.Rel)
	w.OptionalAttr("label", p.Label)
	w.BoolAttr("primary", p.Primary)
}

// EmitXML implements parsable.XMLParsable.
func (p *PhoneNumber) EmitXML(w *parsable.XMLWriter) {
	w.Text(p.Number)
}

// Equal reports whether two phone numbers identify the same number.
func (p *PhoneNumber) Equal(other *PhoneNumber) bool {
	return p.Number == other.Number
}
