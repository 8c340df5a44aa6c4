package atom

import (
	"strconv"

	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Link relation types used across the GData services.
const (
	RelSelf                 = "self"
	RelEdit                 = "edit"
	RelEditMedia            = "edit-media"
	RelAlternate            = "alternate"
	RelRelated              = "related"
	RelEnclosure            = "enclosure"
	RelNext                 = "next"
	RelPrevious             = "previous"
	RelAccessControlList    = "http://schemas.google.com/acl/2007#accessControlList"
	RelBatch                = "http://schemas.google.com/g/2005#batch"
	RelFeed                 = "http://schemas.google.com/g/2005#feed"
	RelPost                 = "http://schemas.google.com/g/2005#post"
	RelResumableCreateMedia = "http://schemas.google.com/g/2005#resumable-create-media"
	RelResumableEditMedia   = "http://schemas.google.com/g/2005#resumable-edit-media"
)

// Link is an atom:link. Look-up by relation returns the first link carrying
// that relation; at most one link per relation is used as a lookup key.
type Link struct {
	parsable.Parsable

	Href   string // required
	Rel    string // defaults to "alternate"
	Type   string
	Title  string
	Length int64
}

// NewLink creates a link with the given href and relation.
func NewLink(href, rel string) *Link {
	return &Link{Href: href, Rel: rel}
}

// ElementName implements parsable.XMLParsable.
func (l *Link) ElementName() (string, string) { return "", "link" }

// PreParseXML reads the link's attributes from the root element.
func (l *Link) PreParseXML(root *parsable.XMLNode) error {
	href, err := parsable.RequiredAttr(root, "href")
	if err != nil {
		return err
	}
	l.Href = href
	l.Rel = root.Attr("rel")
	if l.Rel == "" {
		l.Rel = RelAlternate
	}
	l.Type = root.Attr("type")
	l.Title = root.Attr("title")
	if v, ok := root.LookupAttr("length"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return parsable.ErrUnknownPropertyValue("link@length", v)
		}
		l.Length = n
	}
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (l *Link) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("href", l.Href)
	w.OptionalAttr("title", l.Title)
	w.OptionalAttr("rel", l.Rel)
	w.OptionalAttr("type", l.Type)
	if l.Length > 0 {
		w.Attr("length", strconv.FormatInt(l.Length, 10))
	}
}
