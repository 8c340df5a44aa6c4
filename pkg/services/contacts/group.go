package contacts

import (
	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/gd"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// GroupKindTerm identifies a contact group entry's schema.
const GroupKindTerm = "http://schemas.google.com/contact/2008#group"

// Group is a contact group entry. System groups (My Contacts, Friends,
// Family, Coworkers) carry a SystemGroupID and cannot be deleted.
type Group struct {
	atom.Entry

	SystemGroupID      string
	ExtendedProperties []*gd.ExtendedProperty
	Deleted            bool
}

// NewGroup creates a group with the given name, ready for insertion.
func NewGroup(title string) *Group {
	g := &Group{}
	g.Title = title
	g.SetKind(atom.KindScheme, GroupKindTerm)
	return g
}

// Namespaces implements parsable.XMLParsable.
func (g *Group) Namespaces(ns map[string]string) {
	g.Entry.Namespaces(ns)
	ns["gContact"] = parsable.NSGContact
}

// ParseXML dispatches the group's child elements.
func (g *Group) ParseXML(node *parsable.XMLNode) error {
	switch {
	case node.InNamespace(parsable.NSGData):
		switch node.Name {
		case "extendedProperty":
			return parsable.ObjectFromElement(node, &gd.ExtendedProperty{}, func(p *gd.ExtendedProperty) {
				g.ExtendedProperties = append(g.ExtendedProperties, p)
			})
		case "deleted":
			g.Deleted = true
			return nil
		}
	case node.InNamespace(parsable.NSGContact):
		if node.Name == "systemGroup" {
			id, err := parsable.RequiredAttr(node, "id")
			if err != nil {
				return err
			}
			g.SystemGroupID = id
			return nil
		}
	}
	return g.Entry.ParseXML(node)
}

// EmitXML implements parsable.XMLParsable.
func (g *Group) EmitXML(w *parsable.XMLWriter) {
	g.Entry.EmitXML(w)
	for _, p := range g.ExtendedProperties {
		parsable.EmitChild(p, w)
	}
}

// IsSystemGroup reports whether the group is one of the predefined
// system groups.
func (g *Group) IsSystemGroup() bool { return g.SystemGroupID != "" }
