package atom

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Author is an atom:author.
type Author struct {
	parsable.Parsable

	Name  string // required
	URI   string
	Email string
}

// NewAuthor creates an author with the given name.
func NewAuthor(name string) *Author {
	return &Author{Name: name}
}

// ElementName implements parsable.XMLParsable.
func (a *Author) ElementName() (string, string) { return "", "author" }

// ParseXML dispatches the author's child elements.
func (a *Author) ParseXML(node *parsable.XMLNode) error {
	if node.InNamespace(parsable.NSAtom) {
		switch node.Name {
		case "name":
			return parsable.StringContent(node, parsable.Required|parsable.NoDupe, &a.Name)
		case "uri":
			return parsable.StringContent(node, parsable.NoDupe, &a.URI)
		case "email":
			return parsable.StringContent(node, parsable.NoDupe, &a.Email)
		}
	}
	return a.Parsable.ParseXML(node)
}

// PostParseXML verifies the required name was present.
func (a *Author) PostParseXML() error {
	if a.Name == "" {
		return parsable.ErrRequiredElementMissing("name", "author")
	}
	return nil
}

// EmitXML implements parsable.XMLParsable.
func (a *Author) EmitXML(w *parsable.XMLWriter) {
	w.Element("name", a.Name)
	w.Element("uri", a.URI)
	w.Element("email", a.Email)
}
