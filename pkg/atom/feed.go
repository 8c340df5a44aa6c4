package atom

import (
	"encoding/json"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// EntryLike is satisfied by Entry and every service-specific type that
// embeds it.
type EntryLike interface {
	parsable.XMLParsable
	EntryBase() *Entry
}

// EntryFactory constructs a fresh instance of a feed's concrete entry type.
type EntryFactory func() EntryLike

// Feed is an Atom feed: a paged sequence of entries plus feed-level
// metadata. Pagination state arrives either as OpenSearch indices or, on
// JSON services, as an opaque next-page token.
type Feed struct {
	parsable.Parsable

	Title    string
	Subtitle string
	ID       string
	ETag     string
	Updated  time.Time
	Logo     string
	Icon     string
	Rights   string

	Categories []*Category
	Authors    []*Author
	Links      []*Link
	Generator  *Generator

	ItemsPerPage  int
	StartIndex    int
	TotalResults  int
	NextPageToken string

	// Entries in document order.
	Entries []EntryLike

	newEntry EntryFactory
}

// NewFeed creates an empty feed whose entries are constructed by factory.
func NewFeed(factory EntryFactory) *Feed {
	return &Feed{newEntry: factory}
}

// ParseFeedXML constructs a feed from an XML document, using factory for
// its entries.
func ParseFeedXML(data []byte, factory EntryFactory) (*Feed, error) {
	f := NewFeed(factory)
	if err := parsable.FromXML(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ParseFeedJSON constructs a feed from a JSON document, using factory for
// its entries.
func ParseFeedJSON(data []byte, factory EntryFactory) (*Feed, error) {
	f := NewFeed(factory)
	if err := parsable.FromJSON(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ElementName implements parsable.XMLParsable.
func (f *Feed) ElementName() (string, string) { return "", "feed" }

// Namespaces implements parsable.XMLParsable.
func (f *Feed) Namespaces(ns map[string]string) {
	ns["gd"] = parsable.NSGData
	ns["openSearch"] = parsable.NSOpenSearch
}

// LookupLink returns the first feed-level link with the given relation,
// or nil.
func (f *Feed) LookupLink(rel string) *Link {
	for _, l := range f.Links {
		if l.Rel == rel {
			return l
		}
	}
	return nil
}

// AddCategory appends a feed-level category unless an equal (scheme, term)
// pair is already present.
func (f *Feed) AddCategory(c *Category) {
	for _, existing := range f.Categories {
		if existing.Matches(c) {
			return
		}
	}
	f.Categories = append(f.Categories, c)
}

// PreParseXML reads the feed's gd:etag attribute.
func (f *Feed) PreParseXML(root *parsable.XMLNode) error {
	f.ETag = root.Attr("etag")
	return nil
}

// ParseXML dispatches the feed's child elements.
func (f *Feed) ParseXML(node *parsable.XMLNode) error {
	switch {
	case node.InNamespace(parsable.NSAtom):
		switch node.Name {
		case "entry":
			return f.parseEntry(node)
		case "title":
			return parsable.StringContent(node, parsable.NoDupe, &f.Title)
		case "subtitle":
			return parsable.StringContent(node, parsable.NoDupe, &f.Subtitle)
		case "id":
			return parsable.StringContent(node, parsable.Required|parsable.NoDupe, &f.ID)
		case "updated":
			return parsable.TimeContent(node, parsable.NoDupe, &f.Updated)
		case "logo":
			return parsable.StringContent(node, parsable.NoDupe, &f.Logo)
		case "icon":
			return parsable.StringContent(node, parsable.NoDupe, &f.Icon)
		case "rights":
			return parsable.StringContent(node, parsable.None, &f.Rights)
		case "category":
			return parsable.ObjectFromElement(node, &Category{}, f.AddCategory)
		case "link":
			return parsable.ObjectFromElement(node, &Link{}, func(l *Link) {
				f.Links = append(f.Links, l)
			})
		case "author":
			return parsable.ObjectFromElement(node, &Author{}, func(a *Author) {
				f.Authors = append(f.Authors, a)
			})
		case "generator":
			if f.Generator != nil {
				return parsable.ErrDuplicateElement(node.QName())
			}
			g := &Generator{}
			if err := parsable.ParseNode(node, g); err != nil {
				return err
			}
			f.Generator = g
			return nil
		}
	case node.InNamespace(parsable.NSOpenSearch):
		switch node.Name {
		case "itemsPerPage":
			return parsable.IntContent(node, parsable.NoDupe, &f.ItemsPerPage)
		case "startIndex":
			return parsable.IntContent(node, parsable.NoDupe, &f.StartIndex)
		case "totalResults":
			return parsable.IntContent(node, parsable.NoDupe, &f.TotalResults)
		}
	}
	return f.Parsable.ParseXML(node)
}

func (f *Feed) parseEntry(node *parsable.XMLNode) error {
	if f.newEntry == nil {
		f.newEntry = func() EntryLike { return &Entry{} }
	}
	e := f.newEntry()
	if err := parsable.ParseNode(node, e); err != nil {
		return err
	}
	f.Entries = append(f.Entries, e)
	return nil
}

// ParseJSON dispatches the members of a JSON feed document.
func (f *Feed) ParseJSON(member string, value json.RawMessage) error {
	switch member {
	case "etag":
		return parsable.StringFromJSON(member, value, parsable.None, &f.ETag)
	case "nextPageToken":
		return parsable.StringFromJSON(member, value, parsable.None, &f.NextPageToken)
	case "items":
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			return parsable.ErrUnknownPropertyValue("items", string(value))
		}
		if f.newEntry == nil {
			f.newEntry = func() EntryLike { return &Entry{} }
		}
		for _, item := range items {
			e := f.newEntry()
			je, ok := any(e).(parsable.JSONParsable)
			if !ok {
				return parsable.ErrUnknownPropertyValue("items", "entry type has no JSON form")
			}
			if err := parsable.FromJSON(item, je); err != nil {
				return err
			}
			f.Entries = append(f.Entries, e)
		}
		return nil
	case "kind":
		// Feed kind marker on JSON services carries no entry data.
		return nil
	}
	return f.Parsable.ParseJSON(member, value)
}

// EmitXML implements parsable.XMLParsable. Feeds are emitted when a batch
// operation synthesizes its request document.
func (f *Feed) EmitXML(w *parsable.XMLWriter) {
	if f.Title != "" {
		w.Raw("<title type='text'>")
		w.Text(f.Title)
		w.Raw("</title>")
	}
	w.Element("subtitle", f.Subtitle)
	w.Element("id", f.ID)
	w.TimeElement("updated", f.Updated)
	for _, c := range f.Categories {
		parsable.EmitChild(c, w)
	}
	for _, l := range f.Links {
		parsable.EmitChild(l, w)
	}
	for _, a := range f.Authors {
		parsable.EmitChild(a, w)
	}
	for _, e := range f.Entries {
		parsable.EmitChild(e, w)
	}
}

// PreEmitXML appends the feed's ETag.
func (f *Feed) PreEmitXML(w *parsable.XMLWriter) {
	if f.ETag != "" {
		w.Attr("gd:etag", f.ETag)
	}
}
