package parsable

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

// XMLAttr is a single attribute on an XMLNode.
type XMLAttr struct {
	Prefix    string // prefix as written in the document, "" if none
	Name      string // local name
	Namespace string // resolved namespace URI, "" if none
	Value     string
}

// XMLNode is a lightweight DOM node. The parser builds a full tree so that
// unrecognised subtrees can be preserved verbatim and their namespace
// bindings carried over to re-emission.
type XMLNode struct {
	Prefix    string // prefix as written in the document, "" if none
	Name      string // local name
	Namespace string // resolved namespace URI, "" if none
	Attrs     []XMLAttr
	Children  []*XMLNode
	Text      string // concatenated character data directly under this node

	// scope holds the prefix to URI bindings visible at this node,
	// including inherited ones. The default namespace is under "".
	scope map[string]string
}

// Attr returns the value of the named attribute, or "" if absent.
func (n *XMLNode) Attr(name string) string {
	v, _ := n.LookupAttr(name)
	return v
}

// LookupAttr returns the value of the named attribute and whether it is set.
func (n *XMLNode) LookupAttr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// InNamespace reports whether the node belongs to the given namespace URI.
// Nodes with no namespace are treated as Atom, since GData documents use
// Atom as their default namespace.
func (n *XMLNode) InNamespace(uri string) bool {
	if n.Namespace == "" {
		return uri == NSAtom
	}
	return n.Namespace == uri
}

// QName returns the node's name with its prefix, as written in the document.
func (n *XMLNode) QName() string {
	if n.Prefix == "" {
		return n.Name
	}
	return n.Prefix + ":" + n.Name
}

// Bindings walks the subtree rooted at the node and collects the prefix to
// namespace-URI bindings its elements and attributes actually use.
func (n *XMLNode) Bindings(out map[string]string) {
	if n.Prefix != "" && n.Namespace != "" {
		out[n.Prefix] = n.Namespace
	}
	for _, a := range n.Attrs {
		if a.Prefix != "" && a.Namespace != "" {
			out[a.Prefix] = a.Namespace
		}
	}
	for _, c := range n.Children {
		c.Bindings(out)
	}
}

// Dump serializes the subtree rooted at the node, preserving the prefixes
// the document used. Namespace declarations are not re-emitted; callers
// carry the bindings separately.
func (n *XMLNode) Dump(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(n.QName())
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		if a.Prefix != "" {
			sb.WriteString(a.Prefix)
			sb.WriteByte(':')
		}
		sb.WriteString(a.Name)
		sb.WriteString("='")
		sb.WriteString(escapeXML(a.Value))
		sb.WriteByte('\'')
	}
	if len(n.Children) == 0 && n.Text == "" {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	sb.WriteString(escapeXML(n.Text))
	for _, c := range n.Children {
		c.Dump(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.QName())
	sb.WriteByte('>')
}

// ParseXMLDocument parses a whole document and returns its root node.
func ParseXMLDocument(data []byte) (*XMLNode, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &errors.ParseError{Kind: errors.ParseEmptyDocument}
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *XMLNode
	var stack []*XMLNode

	push := func(se xml.StartElement, parent *XMLNode) *XMLNode {
		// Build this element's namespace scope from the parent's plus any
		// xmlns declarations on the element itself.
		scope := map[string]string{}
		if parent != nil {
			for k, v := range parent.scope {
				scope[k] = v
			}
		}
		var attrs []XMLAttr
		for _, a := range se.Attr {
			switch {
			case a.Name.Space == "xmlns":
				scope[a.Name.Local] = a.Value
			case a.Name.Space == "" && a.Name.Local == "xmlns":
				scope[""] = a.Value
			default:
				attrs = append(attrs, XMLAttr{
					Prefix:    prefixFor(scope, a.Name.Space),
					Name:      a.Name.Local,
					Namespace: attrNamespace(a.Name.Space),
					Value:     a.Value,
				})
			}
		}
		node := &XMLNode{
			Prefix:    prefixFor(scope, se.Name.Space),
			Name:      se.Name.Local,
			Namespace: se.Name.Space,
			Attrs:     attrs,
			scope:     scope,
		}
		if parent != nil {
			parent.Children = append(parent.Children, node)
		}
		return node
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("xml", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var parent *XMLNode
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			node := push(t, parent)
			if root == nil {
				root = node
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.WrapParse("xml", errors.New("unbalanced end element"))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, &errors.ParseError{Kind: errors.ParseEmptyDocument}
	}

	// Character data between child elements is rarely meaningful in GData
	// documents; trim pure-whitespace text so it doesn't pollute content.
	trimWhitespaceText(root)
	return root, nil
}

func trimWhitespaceText(n *XMLNode) {
	if len(n.Children) > 0 && strings.TrimSpace(n.Text) == "" {
		n.Text = ""
	}
	for _, c := range n.Children {
		trimWhitespaceText(c)
	}
}

// prefixFor inverts the scope map to recover the prefix a namespace URI was
// bound to. encoding/xml resolves prefixes to URIs during tokenization, so
// the original prefix has to be looked up again for faithful re-emission.
func prefixFor(scope map[string]string, uri string) string {
	if uri == "" || scope[""] == uri {
		return ""
	}
	for prefix, bound := range scope {
		if prefix != "" && bound == uri {
			return prefix
		}
	}
	// An unbound prefix: encoding/xml leaves the prefix itself in Space.
	if !strings.Contains(uri, "/") {
		return uri
	}
	return ""
}

// attrNamespace filters out pseudo-namespaces encoding/xml reports for
// unprefixed attributes.
func attrNamespace(space string) string {
	if space == "xmlns" {
		return ""
	}
	return space
}

// escapeXML escapes the five XML special characters for use in content and
// single-quoted attribute values.
func escapeXML(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '\'':
			sb.WriteString("&apos;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
