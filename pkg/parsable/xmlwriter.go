package parsable

import (
	"bytes"
	"strconv"
	"time"
)

// XMLWriter is an append-only XML output buffer. Entities build their
// representation by appending fragments, matching the document shapes the
// GData services expect (single-quoted attributes included).
type XMLWriter struct {
	buf bytes.Buffer
}

// Raw appends a pre-escaped fragment.
func (w *XMLWriter) Raw(s string) {
	w.buf.WriteString(s)
}

// Text appends escaped character data.
func (w *XMLWriter) Text(s string) {
	w.buf.WriteString(escapeXML(s))
}

// Element appends <name>text</name> with the text escaped. Nothing is
// written when text is empty.
func (w *XMLWriter) Element(name, text string) {
	if text == "" {
		return
	}
	w.Raw("<" + name + ">")
	w.Text(text)
	w.Raw("</" + name + ">")
}

// TimeElement appends <name>ISO-8601 datetime</name>. Nothing is written
// for the zero time.
func (w *XMLWriter) TimeElement(name string, t time.Time) {
	if t.IsZero() {
		return
	}
	w.Raw("<" + name + ">" + FormatISO8601(t) + "</" + name + ">")
}

// Attr appends a single-quoted attribute with the value escaped, preceded
// by a space so it can follow an element name directly.
func (w *XMLWriter) Attr(name, value string) {
	w.Raw(" " + name + "='")
	w.Text(value)
	w.Raw("'")
}

// OptionalAttr appends the attribute only when the value is non-empty.
func (w *XMLWriter) OptionalAttr(name, value string) {
	if value == "" {
		return
	}
	w.Attr(name, value)
}

// BoolAttr appends name='true' or name='false'.
func (w *XMLWriter) BoolAttr(name string, v bool) {
	w.Attr(name, strconv.FormatBool(v))
}

// Len returns the number of bytes written so far.
func (w *XMLWriter) Len() int {
	return w.buf.Len()
}

// String returns everything written so far.
func (w *XMLWriter) String() string {
	return w.buf.String()
}

// truncate discards everything written after length n.
func (w *XMLWriter) truncate(n int) {
	w.buf.Truncate(n)
}
