package atom

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Generator is an atom:generator: the agent that produced a feed.
type Generator struct {
	parsable.Parsable

	Name    string
	URI     string
	Version string
}

// ElementName implements parsable.XMLParsable.
func (g *Generator) ElementName() (string, string) { return "", "generator" }

// PreParseXML reads the generator's attributes and content.
func (g *Generator) PreParseXML(root *parsable.XMLNode) error {
	g.URI = root.Attr("uri")
	g.Version = root.Attr("version")
	g.Name = root.Text
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (g *Generator) PreEmitXML(w *parsable.XMLWriter) {
	w.OptionalAttr("uri", g.URI)
	w.OptionalAttr("version", g.Version)
}

// EmitXML implements parsable.XMLParsable.
func (g *Generator) EmitXML(w *parsable.XMLWriter) {
	w.Text(g.Name)
}
