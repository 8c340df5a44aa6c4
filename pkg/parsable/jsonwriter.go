package parsable

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// JSONWriter builds a JSON object member by member, preserving the order
// members were appended in.
type JSONWriter struct {
	buf     bytes.Buffer
	members int
	err     error
}

// Member appends a member with a marshalled value.
func (w *JSONWriter) Member(name string, value any) {
	if w.err != nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = err
		return
	}
	w.Raw(name, raw)
}

// OptionalMember appends the member only when the value is non-empty.
func (w *JSONWriter) OptionalMember(name, value string) {
	if value == "" {
		return
	}
	w.Member(name, value)
}

// TimeMember appends the member as an ISO-8601 datetime string. Nothing is
// written for the zero time.
func (w *JSONWriter) TimeMember(name string, t time.Time) {
	if t.IsZero() {
		return
	}
	w.Member(name, FormatISO8601(t))
}

// Raw appends a member with an already-serialized value.
func (w *JSONWriter) Raw(name string, raw json.RawMessage) {
	if w.err != nil {
		return
	}
	if w.members == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.buf.WriteString(strconv.Quote(name))
	w.buf.WriteByte(':')
	w.buf.Write(raw)
	w.members++
}

// Object appends a member whose value is a nested JSONParsable object.
func (w *JSONWriter) Object(name string, p JSONParsable) {
	if w.err != nil {
		return
	}
	raw, err := ToJSON(p)
	if err != nil {
		w.err = err
		return
	}
	w.Raw(name, raw)
}

// Err returns the first marshalling error encountered, if any.
func (w *JSONWriter) Err() error {
	return w.err
}

// Bytes returns the completed object.
func (w *JSONWriter) Bytes() []byte {
	if w.members == 0 {
		return []byte("{}")
	}
	out := make([]byte, 0, w.buf.Len()+1)
	out = append(out, w.buf.Bytes()...)
	return append(out, '}')
}
