// Package atom provides the Atom Syndication entities underlying the XML
// variant of the GData wire protocol: entries, feeds, and the links,
// categories, and authors they carry. Service-specific entry types embed
// Entry and extend its parse and emit hooks.
package atom

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// KindScheme is the category scheme identifying an entry's kind term.
const KindScheme = "http://schemas.google.com/g/2005#kind"

// Category is an atom:category: a (scheme, term, label) triple.
// Categories on an entry have set semantics on (scheme, term).
type Category struct {
	parsable.Parsable

	Scheme string
	Term   string // required
	Label  string
}

// NewCategory creates a category with the given term and scheme.
func NewCategory(term, scheme string) *Category {
	return &Category{Term: term, Scheme: scheme}
}

// ElementName implements parsable.XMLParsable.
func (c *Category) ElementName() (string, string) { return "", "category" }

// PreParseXML reads the category's attributes from the root element.
func (c *Category) PreParseXML(root *parsable.XMLNode) error {
	term, err := parsable.RequiredAttr(root, "term")
	if err != nil {
		return err
	}
	c.Term = term
	c.Scheme = root.Attr("scheme")
	c.Label = root.Attr("label")
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (c *Category) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("term", c.Term)
	w.OptionalAttr("scheme", c.Scheme)
	w.OptionalAttr("label", c.Label)
}

// Matches reports whether two categories are equal under the collection's
// (scheme, term) set semantics.
func (c *Category) Matches(other *Category) bool {
	return c.Scheme == other.Scheme && c.Term == other.Term
}
