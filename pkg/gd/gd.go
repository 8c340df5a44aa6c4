// Package gd provides the GData core namespace property types shared by
// the services: typed, labelled contact points (email, phone, postal and
// IM addresses, organizations), structured names, event participants and
// places (when, who, where), reminders, and extended properties.
//
// Most types carry a relation URI ("rel") or a free-text label, and the
// contact-point types a primary flag; the server enforces that at most one
// member of a collection is primary, the library does not.
package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Relation URIs for the contact-point types.
const (
	RelHome  = parsable.NSGData + "#home"
	RelWork  = parsable.NSGData + "#work"
	RelOther = parsable.NSGData + "#other"
)

// namespaces adds the gd binding; every type in the package uses it.
func namespaces(ns map[string]string) {
	ns["gd"] = parsable.NSGData
}
