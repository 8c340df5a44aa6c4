// Package calendar accesses the calendar service: calendars from the
// user's calendar list in their JSON form, events in their Atom form,
// and the per-calendar access-control feed.
package calendar

import (
	"encoding/json"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Access levels the user can hold on a calendar.
const (
	AccessRoleFreeBusy = "freeBusyReader"
	AccessRoleRead     = "reader"
	AccessRoleEditor   = "writer"
	AccessRoleOwner    = "owner"
)

// Calendar is a calendar from the user's calendar list. It crosses the
// wire in JSON; the title maps to the "summary" member and the summary
// to "description".
type Calendar struct {
	atom.Entry

	TimeZone    string
	Color       string // hexadecimal RGB, e.g. "#2952A3"
	IsHidden    bool
	IsSelected  bool
	AccessLevel string // one of the AccessRole constants
}

// NewCalendar creates a calendar with the given id.
func NewCalendar(id string) *Calendar {
	return &Calendar{Entry: atom.Entry{ID: id}}
}

// ParseJSON dispatches the members of the calendar's JSON form.
func (c *Calendar) ParseJSON(member string, value json.RawMessage) error {
	switch member {
	case "id":
		if err := parsable.StringFromJSON(member, value, parsable.None, &c.ID); err != nil {
			return err
		}
		// Calendar entries carry no selfLink of their own, so
		// synthesize it, and the ACL link, from the id.
		if c.ID != "" {
			uri := CalendarURI(c.ID)
			c.AddLink(atom.NewLink(uri, atom.RelSelf))
			c.AddLink(atom.NewLink(uri+"/acl", atom.RelAccessControlList))
		}
		return nil
	case "etag":
		return parsable.StringFromJSON(member, value, parsable.None, &c.ETag)
	case "summary":
		return parsable.StringFromJSON(member, value, parsable.None, &c.Title)
	case "description":
		return parsable.StringFromJSON(member, value, parsable.None, &c.Summary)
	case "timeZone":
		return parsable.StringFromJSON(member, value, parsable.None, &c.TimeZone)
	case "backgroundColor":
		return parsable.StringFromJSON(member, value, parsable.None, &c.Color)
	case "hidden":
		return parsable.BoolFromJSON(member, value, parsable.None, &c.IsHidden)
	case "selected":
		return parsable.BoolFromJSON(member, value, parsable.None, &c.IsSelected)
	case "accessRole":
		return parsable.StringFromJSON(member, value, parsable.None, &c.AccessLevel)
	case "kind":
		return nil
	}
	return c.Entry.Parsable.ParseJSON(member, value)
}

// EmitJSON implements parsable.JSONParsable.
func (c *Calendar) EmitJSON(w *parsable.JSONWriter) error {
	w.OptionalMember("id", c.ID)
	w.Member("kind", "calendar#calendar")
	w.OptionalMember("etag", c.ETag)
	w.OptionalMember("summary", c.Title)
	w.OptionalMember("description", c.Summary)
	w.OptionalMember("timeZone", c.TimeZone)
	w.Member("hidden", c.IsHidden)
	w.OptionalMember("backgroundColor", c.Color)
	w.Member("selected", c.IsSelected)
	return w.Err()
}

// ContentType implements parsable.Payload.
func (c *Calendar) ContentType() string { return parsable.ContentTypeJSON }

// ACLLink implements acl.Handler.
func (c *Calendar) ACLLink() *atom.Link {
	return c.LookupLink(atom.RelAccessControlList)
}
