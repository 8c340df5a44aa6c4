// Package contacts accesses the contacts service: contact and group
// entries under the m8 feeds, with query, CRUD and batch support.
package contacts

import (
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/gcontact"
	"github.com/GNOME/libgdata-sub004/pkg/gd"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// ContactKindTerm identifies a contact entry's schema.
const ContactKindTerm = "http://schemas.google.com/contact/2008#contact"

// UserDefinedField is a free-form key/value pair the user attached to
// a contact.
type UserDefinedField struct {
	Key   string
	Value string
}

// GroupMembership records a contact's membership in a group, by the
// group entry's id URI. Deleted memberships linger in the feed until
// purged.
type GroupMembership struct {
	GroupURI string
	Deleted  bool
}

// Contact is a contact entry.
type Contact struct {
	atom.Entry

	Name            *gd.Name
	Emails          []*gd.EmailAddress
	IMs             []*gd.IMAddress
	Phones          []*gd.PhoneNumber
	PostalAddresses []*gd.PostalAddress
	Organizations   []*gd.Organization

	Jots        []*gcontact.Jot
	Relations   []*gcontact.Relation
	Websites    []*gcontact.Website
	Events      []*gcontact.Event
	Calendars   []*gcontact.Calendar
	ExternalIDs []*gcontact.ExternalID
	Languages   []*gcontact.Language

	ExtendedProperties []*gd.ExtendedProperty
	UserDefinedFields  []UserDefinedField
	Groups             []GroupMembership
	Hobbies            []string

	Nickname string
	FileAs   string

	// Birthday is stored date-only; BirthdayHasYear distinguishes a
	// full date from a yearless --MM-DD one.
	Birthday        time.Time
	BirthdayHasYear bool

	// Deleted marks a tombstone entry in a show-deleted query.
	Deleted bool
}

// NewContact creates an empty contact ready for insertion.
func NewContact() *Contact {
	c := &Contact{}
	c.SetKind(atom.KindScheme, ContactKindTerm)
	return c
}

// Namespaces implements parsable.XMLParsable.
func (c *Contact) Namespaces(ns map[string]string) {
	c.Entry.Namespaces(ns)
	ns["gContact"] = parsable.NSGContact
}

// ParseXML dispatches the contact's child elements.
func (c *Contact) ParseXML(node *parsable.XMLNode) error {
	switch {
	case node.InNamespace(parsable.NSGData):
		switch node.Name {
		case "name":
			c.Name = &gd.Name{}
			return parsable.ParseNode(node, c.Name)
		case "email":
			return parsable.ObjectFromElement(node, &gd.EmailAddress{}, c.addEmail)
		case "im":
			return parsable.ObjectFromElement(node, &gd.IMAddress{}, c.addIM)
		case "phoneNumber":
			return parsable.ObjectFromElement(node, &gd.PhoneNumber{}, c.addPhone)
		case "structuredPostalAddress":
			return parsable.ObjectFromElement(node, &gd.PostalAddress{}, c.addPostalAddress)
		case "organization":
			return parsable.ObjectFromElement(node, &gd.Organization{}, c.addOrganization)
		case "extendedProperty":
			return parsable.ObjectFromElement(node, &gd.ExtendedProperty{}, c.addExtendedProperty)
		case "deleted":
			c.Deleted = true
			return nil
		}
	case node.InNamespace(parsable.NSGContact):
		switch node.Name {
		case "jot":
			return parsable.ObjectFromElement(node, &gcontact.Jot{}, func(j *gcontact.Jot) { c.Jots = append(c.Jots, j) })
		case "relation":
			return parsable.ObjectFromElement(node, &gcontact.Relation{}, func(r *gcontact.Relation) { c.Relations = append(c.Relations, r) })
		case "website":
			return parsable.ObjectFromElement(node, &gcontact.Website{}, func(w *gcontact.Website) { c.Websites = append(c.Websites, w) })
		case "event":
			return parsable.ObjectFromElement(node, &gcontact.Event{}, func(e *gcontact.Event) { c.Events = append(c.Events, e) })
		case "calendarLink":
			return parsable.ObjectFromElement(node, &gcontact.Calendar{}, func(cl *gcontact.Calendar) { c.Calendars = append(c.Calendars, cl) })
		case "externalId":
			return parsable.ObjectFromElement(node, &gcontact.ExternalID{}, func(x *gcontact.ExternalID) { c.ExternalIDs = append(c.ExternalIDs, x) })
		case "language":
			return parsable.ObjectFromElement(node, &gcontact.Language{}, func(l *gcontact.Language) { c.Languages = append(c.Languages, l) })
		case "userDefinedField":
			key, err := parsable.RequiredAttr(node, "key")
			if err != nil {
				return err
			}
			c.SetUserDefinedField(key, node.Attr("value"))
			return nil
		case "groupMembershipInfo":
			href, err := parsable.RequiredAttr(node, "href")
			if err != nil {
				return err
			}
			deleted, err := parsable.BoolAttr(node, "deleted", parsable.None)
			if err != nil {
				return err
			}
			c.Groups = append(c.Groups, GroupMembership{GroupURI: href, Deleted: deleted})
			return nil
		case "hobby":
			if node.Text != "" {
				c.AddHobby(node.Text)
			}
			return nil
		case "nickname":
			return parsable.StringContent(node, parsable.NoDupe, &c.Nickname)
		case "fileAs":
			return parsable.StringContent(node, parsable.NoDupe, &c.FileAs)
		case "birthday":
			return c.parseBirthday(node)
		}
	}
	return c.Entry.ParseXML(node)
}

func (c *Contact) parseBirthday(node *parsable.XMLNode) error {
	when, err := parsable.RequiredAttr(node, "when")
	if err != nil {
		return err
	}
	if noYear, ok := cutYearlessDate(when); ok {
		t, err := time.Parse("--01-02", noYear)
		if err != nil {
			return parsable.ErrNotISO8601(node.QName(), when)
		}
		c.Birthday = t
		c.BirthdayHasYear = false
		return nil
	}
	t, err := parsable.ParseDate(when)
	if err != nil {
		return parsable.ErrNotISO8601(node.QName(), when)
	}
	c.Birthday = t
	c.BirthdayHasYear = true
	return nil
}

func cutYearlessDate(when string) (string, bool) {
	if len(when) == 7 && when[0] == '-' && when[1] == '-' {
		return when, true
	}
	return "", false
}

// EmitXML appends the contact's extensions after the Atom core, in the
// feed's canonical element order.
func (c *Contact) EmitXML(w *parsable.XMLWriter) {
	c.Entry.EmitXML(w)

	if c.Name != nil {
		parsable.EmitChild(c.Name, w)
	}
	for _, e := range c.Emails {
		parsable.EmitChild(e, w)
	}
	for _, im := range c.IMs {
		parsable.EmitChild(im, w)
	}
	for _, p := range c.Phones {
		parsable.EmitChild(p, w)
	}
	for _, a := range c.PostalAddresses {
		parsable.EmitChild(a, w)
	}
	for _, o := range c.Organizations {
		parsable.EmitChild(o, w)
	}
	for _, j := range c.Jots {
		parsable.EmitChild(j, w)
	}
	for _, r := range c.Relations {
		parsable.EmitChild(r, w)
	}
	for _, site := range c.Websites {
		parsable.EmitChild(site, w)
	}
	for _, e := range c.Events {
		parsable.EmitChild(e, w)
	}
	for _, cl := range c.Calendars {
		parsable.EmitChild(cl, w)
	}
	for _, x := range c.ExternalIDs {
		parsable.EmitChild(x, w)
	}
	for _, l := range c.Languages {
		parsable.EmitChild(l, w)
	}
	for _, p := range c.ExtendedProperties {
		parsable.EmitChild(p, w)
	}
	for _, f := range c.UserDefinedFields {
		w.Raw("<gContact:userDefinedField")
		w.Attr("key", f.Key)
		w.Attr("value", f.Value)
		w.Raw("/>")
	}
	for _, g := range c.Groups {
		if g.Deleted {
			continue
		}
		w.Raw("<gContact:groupMembershipInfo")
		w.Attr("href", g.GroupURI)
		w.Raw("/>")
	}
	for _, h := range c.Hobbies {
		w.Element("gContact:hobby", h)
	}
	w.Element("gContact:nickname", c.Nickname)
	w.Element("gContact:fileAs", c.FileAs)
	if !c.Birthday.IsZero() {
		w.Raw("<gContact:birthday")
		if c.BirthdayHasYear {
			w.Attr("when", parsable.FormatDate(c.Birthday))
		} else {
			w.Attr("when", c.Birthday.Format("--01-02"))
		}
		w.Raw("/>")
	}
}

func (c *Contact) addEmail(e *gd.EmailAddress) { c.Emails = append(c.Emails, e) }

func (c *Contact) addIM(im *gd.IMAddress) { c.IMs = append(c.IMs, im) }

func (c *Contact) addPhone(p *gd.PhoneNumber) { c.Phones = append(c.Phones, p) }

func (c *Contact) addPostalAddress(a *gd.PostalAddress) {
	c.PostalAddresses = append(c.PostalAddresses, a)
}

func (c *Contact) addOrganization(o *gd.Organization) {
	c.Organizations = append(c.Organizations, o)
}

func (c *Contact) addExtendedProperty(p *gd.ExtendedProperty) {
	c.ExtendedProperties = append(c.ExtendedProperties, p)
}

// AddEmail appends an email address.
func (c *Contact) AddEmail(e *gd.EmailAddress) { c.addEmail(e) }

// AddPhone appends a phone number.
func (c *Contact) AddPhone(p *gd.PhoneNumber) { c.addPhone(p) }

// AddHobby records a hobby, ignoring duplicates.
func (c *Contact) AddHobby(hobby string) {
	for _, h := range c.Hobbies {
		if h == hobby {
			return
		}
	}
	c.Hobbies = append(c.Hobbies, hobby)
}

// SetUserDefinedField sets a user-defined field, replacing an existing
// value under the same key.
func (c *Contact) SetUserDefinedField(key, value string) {
	for i, f := range c.UserDefinedFields {
		if f.Key == key {
			c.UserDefinedFields[i].Value = value
			return
		}
	}
	c.UserDefinedFields = append(c.UserDefinedFields, UserDefinedField{Key: key, Value: value})
}

// AddGroup records membership in the group with the given id URI.
func (c *Contact) AddGroup(groupURI string) {
	for i, g := range c.Groups {
		if g.GroupURI == groupURI {
			c.Groups[i].Deleted = false
			return
		}
	}
	c.Groups = append(c.Groups, GroupMembership{GroupURI: groupURI})
}

// PrimaryEmail returns the email address marked primary, or nil.
func (c *Contact) PrimaryEmail() *gd.EmailAddress {
	for _, e := range c.Emails {
		if e.Primary {
			return e
		}
	}
	return nil
}
