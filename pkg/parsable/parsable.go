// Package parsable implements the serialization framework shared by every
// GData entity. An entity can be constructed from an Atom/XML or JSON
// payload and emitted back, round-tripping any elements, attributes,
// namespaces, and JSON members it does not recognise.
//
// Entities embed Parsable, which carries the preserved extras, and override
// the parse and emit hooks they care about. Parsing dispatches each child
// element (or JSON object member) to the entity's ParseXML (ParseJSON)
// hook; an entity handles its own cases and explicitly delegates the rest
// to the type it embeds, bottoming out in Parsable's defaults which
// accumulate the unrecognised content.
package parsable

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

// XMLParsable is implemented by every entity that can be read from and
// written to an Atom/XML payload.
type XMLParsable interface {
	// ElementName returns the entity's root element, with an optional
	// namespace prefix ("" for the Atom default namespace).
	ElementName() (prefix, name string)

	// Namespaces adds the prefix to namespace-URI bindings the entity's
	// emitted XML uses, beyond the Atom default.
	Namespaces(ns map[string]string)

	// PreParseXML runs once against the root element, before its children
	// are dispatched. Entities read root attributes here.
	PreParseXML(root *XMLNode) error

	// ParseXML is invoked once per child element of the root. Unrecognised
	// elements must be delegated to the embedded type's implementation.
	ParseXML(node *XMLNode) error

	// PostParseXML runs once after all children have been dispatched.
	PostParseXML() error

	// PreEmitXML appends attributes to the root element's opening tag.
	PreEmitXML(w *XMLWriter)

	// EmitXML appends the entity's child content.
	EmitXML(w *XMLWriter)

	base() *Parsable
}

// JSONParsable is implemented by every entity that can be read from and
// written to a JSON payload.
type JSONParsable interface {
	// ParseJSON is invoked once per member of the root object.
	// Unrecognised members must be delegated to the embedded type's
	// implementation.
	ParseJSON(member string, value json.RawMessage) error

	// PostParseJSON runs once after all members have been dispatched.
	PostParseJSON() error

	// EmitJSON appends the entity's members to the output object.
	EmitJSON(w *JSONWriter) error

	base() *Parsable
}

// Payload selects the wire format an entity uses when uploaded.
type Payload interface {
	ContentType() string // ContentTypeAtomXML or ContentTypeJSON
}

// Parsable is the base of every entity. It tracks whether the instance was
// constructed from a server payload and preserves unrecognised content so
// re-uploaded entities stay valid.
type Parsable struct {
	extraXML       []string          // serialized unrecognised subtrees, document order
	extraNS        map[string]string // prefix to URI bindings carried by the extras
	extraJSON      map[string]json.RawMessage
	extraJSONOrder []string
	fromPayload    bool
}

func (p *Parsable) base() *Parsable { return p }

// IsFromPayload reports whether the instance was constructed by the parser
// rather than locally.
func (p *Parsable) IsFromPayload() bool {
	return p.fromPayload
}

// ExtraXML returns the unrecognised XML preserved during parsing,
// concatenated in document order.
func (p *Parsable) ExtraXML() string {
	return strings.Join(p.extraXML, "")
}

// ExtraNamespaces returns a copy of the prefix to namespace-URI bindings
// carried by the preserved XML.
func (p *Parsable) ExtraNamespaces() map[string]string {
	out := make(map[string]string, len(p.extraNS))
	for k, v := range p.extraNS {
		out[k] = v
	}
	return out
}

// ElementName returns the empty default; concrete entities override it.
func (p *Parsable) ElementName() (string, string) { return "", "" }

// Namespaces adds nothing by default.
func (p *Parsable) Namespaces(map[string]string) {}

// PreParseXML does nothing by default.
func (p *Parsable) PreParseXML(*XMLNode) error { return nil }

// ParseXML preserves the unrecognised subtree and merges its namespace
// bindings. Entities delegate here after trying their own cases.
func (p *Parsable) ParseXML(node *XMLNode) error {
	var sb strings.Builder
	node.Dump(&sb)
	p.extraXML = append(p.extraXML, sb.String())
	if p.extraNS == nil {
		p.extraNS = map[string]string{}
	}
	node.Bindings(p.extraNS)
	return nil
}

// PostParseXML does nothing by default.
func (p *Parsable) PostParseXML() error { return nil }

// PreEmitXML appends nothing by default.
func (p *Parsable) PreEmitXML(*XMLWriter) {}

// EmitXML appends nothing by default.
func (p *Parsable) EmitXML(*XMLWriter) {}

// ParseJSON preserves a deep copy of the unrecognised member. Entities
// delegate here after trying their own cases.
func (p *Parsable) ParseJSON(member string, value json.RawMessage) error {
	if p.extraJSON == nil {
		p.extraJSON = map[string]json.RawMessage{}
	}
	if _, seen := p.extraJSON[member]; !seen {
		p.extraJSONOrder = append(p.extraJSONOrder, member)
	}
	p.extraJSON[member] = append(json.RawMessage(nil), value...)
	return nil
}

// PostParseJSON does nothing by default.
func (p *Parsable) PostParseJSON() error { return nil }

// EmitJSON appends nothing by default.
func (p *Parsable) EmitJSON(*JSONWriter) error { return nil }

// ContentType returns the Atom/XML content type; JSON-first entities
// override it.
func (p *Parsable) ContentType() string { return ContentTypeAtomXML }

// FromXML constructs p from a complete XML document. On failure the
// partially populated p must be discarded by the caller.
func FromXML(data []byte, p XMLParsable) error {
	root, err := ParseXMLDocument(data)
	if err != nil {
		return err
	}
	return ParseNode(root, p)
}

// ParseNode constructs p from an element subtree: the pre-parse hook runs
// against the root, each child is dispatched to ParseXML, then the
// post-parse hook runs. The instance is flagged as payload-constructed.
func ParseNode(root *XMLNode, p XMLParsable) error {
	p.base().fromPayload = true
	if err := p.PreParseXML(root); err != nil {
		return err
	}
	for _, child := range root.Children {
		if err := p.ParseXML(child); err != nil {
			return err
		}
	}
	return p.PostParseXML()
}

// ToXML emits p as a stand-alone document with all its namespaces declared
// on the root element.
func ToXML(p XMLParsable) string {
	var w XMLWriter
	w.Raw("<?xml version='1.0' encoding='UTF-8'?>")
	emitXML(p, &w, true)
	return w.String()
}

// EmitChild emits p for insertion into a larger document; no namespaces
// are declared beyond the extras carried from parsing.
func EmitChild(p XMLParsable, w *XMLWriter) {
	emitXML(p, w, false)
}

func emitXML(p XMLParsable, w *XMLWriter, declareNS bool) {
	prefix, name := p.ElementName()
	qname := name
	if prefix != "" {
		qname = prefix + ":" + name
	}
	w.Raw("<" + qname)

	b := p.base()
	if declareNS {
		ns := map[string]string{}
		p.Namespaces(ns)
		w.Raw(" xmlns='" + NSAtom + "'")
		// On a prefix collision the carried-over binding wins, so
		// preserved subtrees keep the URI they arrived under.
		for _, pfx := range sortedKeys(ns) {
			if _, carried := b.extraNS[pfx]; !carried {
				w.Raw(" xmlns:" + pfx + "='" + escapeXML(ns[pfx]) + "'")
			}
		}
		for _, pfx := range sortedKeys(b.extraNS) {
			if pfx != "" {
				w.Raw(" xmlns:" + pfx + "='" + escapeXML(b.extraNS[pfx]) + "'")
			}
		}
	} else {
		for _, pfx := range sortedKeys(b.extraNS) {
			if pfx != "" {
				w.Raw(" xmlns:" + pfx + "='" + escapeXML(b.extraNS[pfx]) + "'")
			}
		}
	}

	p.PreEmitXML(w)
	w.Raw(">")
	mark := w.Len()

	p.EmitXML(w)
	for _, extra := range b.extraXML {
		w.Raw(extra)
	}

	if w.Len() == mark {
		// No content was written; self-close.
		w.truncate(mark - 1)
		w.Raw("/>")
	} else {
		w.Raw("</" + qname + ">")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromJSON constructs p from a JSON document whose root must be an object.
// Members are dispatched in document order. On failure the partially
// populated p must be discarded by the caller.
func FromJSON(data []byte, p JSONParsable) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &errors.ParseError{Kind: errors.ParseEmptyDocument}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.WrapParse("json", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.WrapParse("json", errors.New("root node is not an object"))
	}

	p.base().fromPayload = true
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.WrapParse("json", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.WrapParse("json", errors.New("object member name is not a string"))
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return errors.WrapParse("json", err)
		}
		if err := p.ParseJSON(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return errors.WrapParse("json", err)
	}
	return p.PostParseJSON()
}

// ToJSON emits p as a JSON object: the entity's members first, then every
// preserved extra member.
func ToJSON(p JSONParsable) ([]byte, error) {
	var w JSONWriter
	if err := p.EmitJSON(&w); err != nil {
		return nil, err
	}
	b := p.base()
	for _, name := range b.extraJSONOrder {
		w.Raw(name, b.extraJSON[name])
	}
	return w.Bytes(), nil
}
