package atom

import (
	"strconv"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// BatchOperationType names the operation an entry performs inside a batch
// feed.
type BatchOperationType string

// Batch operation types.
const (
	BatchQuery     BatchOperationType = "query"
	BatchInsertion BatchOperationType = "insert"
	BatchUpdate    BatchOperationType = "update"
	BatchDeletion  BatchOperationType = "delete"
)

// Entry is an Atom entry: the base of every GData entity that crosses the
// wire. Service-specific entry types embed Entry, extend ParseXML and
// EmitXML, and declare a kind term so the server recognises their schema.
type Entry struct {
	parsable.Parsable

	Title     string
	ID        string
	ETag      string
	Updated   time.Time
	Published time.Time
	Summary   string
	Rights    string

	// Content holds either inline text content or, when ContentIsURI is
	// set, the URI of out-of-line content.
	Content      string
	ContentIsURI bool

	Authors    []*Author
	Categories []*Category
	Links      []*Link

	// kind term stamped onto the emitted XML; set by entry subtypes.
	kindScheme string
	kindTerm   string

	// batch metadata; set only while the entry rides in a batch feed.
	batchID int
	batchOp BatchOperationType
}

// ElementName implements parsable.XMLParsable.
func (e *Entry) ElementName() (string, string) { return "", "entry" }

// Namespaces implements parsable.XMLParsable.
func (e *Entry) Namespaces(ns map[string]string) {
	ns["gd"] = parsable.NSGData
	if e.batchID != 0 {
		ns["batch"] = parsable.NSBatch
	}
}

// SetKind declares the entry's kind term: the category the server requires
// to identify the entry's schema. The emit path guarantees the category is
// present even when the caller never added it.
func (e *Entry) SetKind(scheme, term string) {
	e.kindScheme = scheme
	e.kindTerm = term
}

// Kind returns the entry's kind term, if declared.
func (e *Entry) Kind() (scheme, term string) {
	return e.kindScheme, e.kindTerm
}

// EntryBase returns the embedded Entry; it lets feed and batch code reach
// the Atom core of any service-specific entry type.
func (e *Entry) EntryBase() *Entry { return e }

// AddAuthor appends an author.
func (e *Entry) AddAuthor(a *Author) {
	e.Authors = append(e.Authors, a)
}

// AddCategory appends a category unless an equal (scheme, term) pair is
// already present.
func (e *Entry) AddCategory(c *Category) {
	for _, existing := range e.Categories {
		if existing.Matches(c) {
			return
		}
	}
	e.Categories = append(e.Categories, c)
}

// AddLink appends a link.
func (e *Entry) AddLink(l *Link) {
	e.Links = append(e.Links, l)
}

// LookupLink returns the first link with the given relation, or nil.
func (e *Entry) LookupLink(rel string) *Link {
	for _, l := range e.Links {
		if l.Rel == rel {
			return l
		}
	}
	return nil
}

// SetBatchData stamps the entry with its batch id and operation type for
// serialization into a batch feed.
func (e *Entry) SetBatchData(id int, op BatchOperationType) {
	e.batchID = id
	e.batchOp = op
}

// PreParseXML reads the entry's gd:etag attribute.
func (e *Entry) PreParseXML(root *parsable.XMLNode) error {
	e.ETag = root.Attr("etag")
	return nil
}

// ParseXML dispatches the entry's child elements, delegating unrecognised
// ones to the preservation default.
func (e *Entry) ParseXML(node *parsable.XMLNode) error {
	switch {
	case node.InNamespace(parsable.NSAtom):
		switch node.Name {
		case "title":
			return parsable.StringContent(node, parsable.NoDupe, &e.Title)
		case "id":
			return parsable.StringContent(node, parsable.Required|parsable.NoDupe, &e.ID)
		case "summary":
			return parsable.StringContent(node, parsable.None, &e.Summary)
		case "rights":
			return parsable.StringContent(node, parsable.None, &e.Rights)
		case "updated":
			return parsable.TimeContent(node, parsable.NoDupe, &e.Updated)
		case "published":
			return parsable.TimeContent(node, parsable.NoDupe, &e.Published)
		case "category":
			return parsable.ObjectFromElement(node, &Category{}, e.AddCategory)
		case "link":
			return parsable.ObjectFromElement(node, &Link{}, e.AddLink)
		case "author":
			return parsable.ObjectFromElement(node, &Author{}, e.AddAuthor)
		case "content":
			if src, ok := node.LookupAttr("src"); ok {
				e.Content = src
				e.ContentIsURI = true
			} else {
				e.Content = node.Text
				e.ContentIsURI = false
			}
			return nil
		}
	case node.InNamespace(parsable.NSBatch):
		switch node.Name {
		case "id", "status", "operation":
			// Batch metadata is correlated by the batch feed parser.
			return nil
		}
	}
	return e.Parsable.ParseXML(node)
}

// PreEmitXML appends the entry's ETag.
func (e *Entry) PreEmitXML(w *parsable.XMLWriter) {
	if e.ETag != "" {
		w.Attr("gd:etag", e.ETag)
	}
}

// EmitXML implements parsable.XMLParsable.
func (e *Entry) EmitXML(w *parsable.XMLWriter) {
	w.Raw("<title type='text'>")
	w.Text(e.Title)
	w.Raw("</title>")

	w.Element("id", e.ID)
	w.TimeElement("updated", e.Updated)
	w.TimeElement("published", e.Published)
	if e.Summary != "" {
		w.Raw("<summary type='text'>")
		w.Text(e.Summary)
		w.Raw("</summary>")
	}
	w.Element("rights", e.Rights)
	if e.Content != "" {
		if e.ContentIsURI {
			w.Raw("<content type='text/plain'")
			w.Attr("src", e.Content)
			w.Raw("/>")
		} else {
			w.Raw("<content type='text'>")
			w.Text(e.Content)
			w.Raw("</content>")
		}
	}

	for _, c := range e.emittedCategories() {
		parsable.EmitChild(c, w)
	}
	for _, l := range e.Links {
		parsable.EmitChild(l, w)
	}
	for _, a := range e.Authors {
		parsable.EmitChild(a, w)
	}

	if e.batchID != 0 {
		w.Raw("<batch:id>" + strconv.Itoa(e.batchID) + "</batch:id>")
		w.Raw("<batch:operation")
		w.Attr("type", string(e.batchOp))
		w.Raw("/>")
	}
}

// emittedCategories returns the entry's categories with its kind term
// guaranteed present.
func (e *Entry) emittedCategories() []*Category {
	if e.kindTerm == "" {
		return e.Categories
	}
	kind := NewCategory(e.kindTerm, e.kindScheme)
	for _, c := range e.Categories {
		if c.Matches(kind) {
			return e.Categories
		}
	}
	return append([]*Category{kind}, e.Categories...)
}
