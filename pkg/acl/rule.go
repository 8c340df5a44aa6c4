// Package acl models access-control lists: the rule entries a service
// attaches to an entity through its access-control-list link, in both
// their Atom/XML (gAcl namespace) and JSON forms.
package acl

import (
	"encoding/json"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// RoleNone is the base role carried by every service: no rights.
// Services extend the role vocabulary with their own tokens.
const RoleNone = "none"

// Scope types a rule can apply to.
const (
	ScopeDefault = "default" // public access; scope value must be absent
	ScopeUser    = "user"
	ScopeGroup   = "group"
	ScopeDomain  = "domain"
)

// Rule is an access-control rule: a role granted to a scope. A rule with
// scope type "default" applies to everyone and carries no scope value;
// every other scope type requires one.
type Rule struct {
	atom.Entry

	Role       string
	ScopeType  string
	ScopeValue string
	Edited     time.Time
}

// NewRule creates a rule granting role to the given scope.
func NewRule(role, scopeType, scopeValue string) *Rule {
	r := &Rule{Role: role, ScopeType: scopeType, ScopeValue: scopeValue}
	r.SetKind(atom.KindScheme, parsable.NSGAcl+"#accessRule")
	return r
}

// Namespaces implements parsable.XMLParsable.
func (r *Rule) Namespaces(ns map[string]string) {
	r.Entry.Namespaces(ns)
	ns["gAcl"] = parsable.NSGAcl
	ns["app"] = parsable.NSApp
}

// ParseXML dispatches the rule's child elements, delegating Atom core
// elements to the entry.
func (r *Rule) ParseXML(node *parsable.XMLNode) error {
	switch {
	case node.InNamespace(parsable.NSGAcl):
		switch node.Name {
		case "role":
			role, err := parsable.RequiredAttr(node, "value")
			if err != nil {
				return err
			}
			r.Role = role
			return nil
		case "scope":
			scopeType, err := parsable.RequiredAttr(node, "type")
			if err != nil {
				return err
			}
			value, hasValue := node.LookupAttr("value")
			if scopeType != ScopeDefault && !hasValue {
				return parsable.ErrRequiredAttrMissing(node.QName(), "value")
			}
			r.ScopeType = scopeType
			r.ScopeValue = value
			return nil
		}
	case node.InNamespace(parsable.NSApp):
		if node.Name == "edited" {
			return parsable.TimeContent(node, parsable.NoDupe, &r.Edited)
		}
	}
	return r.Entry.ParseXML(node)
}

// EmitXML implements parsable.XMLParsable.
func (r *Rule) EmitXML(w *parsable.XMLWriter) {
	r.Entry.EmitXML(w)
	if r.Role != "" {
		w.Raw("<gAcl:role")
		w.Attr("value", r.Role)
		w.Raw("/>")
	}
	if r.ScopeType != "" {
		w.Raw("<gAcl:scope")
		w.Attr("type", r.ScopeType)
		if r.ScopeType != ScopeDefault && r.ScopeValue != "" {
			w.Attr("value", r.ScopeValue)
		}
		w.Raw("/>")
	}
}

// ParseJSON dispatches the members of the rule's JSON form.
func (r *Rule) ParseJSON(member string, value json.RawMessage) error {
	switch member {
	case "role":
		return parsable.StringFromJSON(member, value, parsable.Required, &r.Role)
	case "scope":
		var scope struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}
		if err := json.Unmarshal(value, &scope); err != nil {
			return parsable.ErrUnknownPropertyValue(member, string(value))
		}
		if scope.Type == "" {
			return parsable.ErrRequiredContentMissing("scope.type")
		}
		if scope.Type != ScopeDefault && scope.Value == "" {
			return parsable.ErrRequiredContentMissing("scope.value")
		}
		r.ScopeType = scope.Type
		r.ScopeValue = scope.Value
		return nil
	case "etag":
		return parsable.StringFromJSON(member, value, parsable.None, &r.ETag)
	case "id":
		return parsable.StringFromJSON(member, value, parsable.None, &r.ID)
	case "kind":
		return nil
	}
	return r.Entry.Parsable.ParseJSON(member, value)
}

// PostParseJSON verifies the rule's required members were present.
func (r *Rule) PostParseJSON() error {
	if r.Role == "" {
		return parsable.ErrRequiredContentMissing("role")
	}
	if r.ScopeType == "" {
		return parsable.ErrRequiredContentMissing("scope")
	}
	return nil
}

// EmitJSON implements parsable.JSONParsable.
func (r *Rule) EmitJSON(w *parsable.JSONWriter) error {
	w.OptionalMember("id", r.ID)
	w.OptionalMember("etag", r.ETag)
	w.Member("role", r.Role)
	scope := map[string]string{"type": r.ScopeType}
	if r.ScopeType != ScopeDefault && r.ScopeValue != "" {
		scope["value"] = r.ScopeValue
	}
	w.Member("scope", scope)
	return w.Err()
}

// ContentType implements parsable.Payload; rules default to their Atom
// form, and JSON-only services parse them with ParseJSON directly.
func (r *Rule) ContentType() string { return parsable.ContentTypeAtomXML }

// Handler is implemented by entries that expose an access-control list.
// The rule feed is reached through the entry link with the
// access-control-list relation.
type Handler interface {
	atom.EntryLike

	// ACLLink returns the link the entity's rule feed lives behind, or
	// nil when the server exposed none.
	ACLLink() *atom.Link
}

// LinkOf returns the access-control-list link of any entry, satisfying
// Handler for entry types that expose their ACL through the standard
// relation.
func LinkOf(e atom.EntryLike) *atom.Link {
	return e.EntryBase().LookupLink(atom.RelAccessControlList)
}
