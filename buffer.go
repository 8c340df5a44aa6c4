package gdata

import (
	"io"
	"sync"
)

// defaultBufferLimit bounds how far a writer may run ahead of the
// committed watermark before blocking.
const defaultBufferLimit = 8 << 20

// buffer is a bounded byte buffer between the caller writing a media
// stream and the worker sending it. Bytes are addressed by absolute
// stream offset; the buffer retains everything after the committed
// watermark so a failed chunk can be re-sent without the caller's
// involvement.
type buffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	data  []byte
	start int64 // stream offset of data[0]
	limit int

	eof bool
	err error
}

func newBuffer(limit int) *buffer {
	if limit <= 0 {
		limit = defaultBufferLimit
	}
	b := &buffer{limit: limit}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// write appends p, blocking while the buffer is at its limit. It
// returns the buffer's abort error if the buffer dies while waiting.
func (b *buffer) write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	written := 0
	for len(p) > 0 {
		for b.err == nil && !b.eof && len(b.data) >= b.limit {
			b.cond.Wait()
		}
		if b.err != nil {
			return written, b.err
		}
		if b.eof {
			return written, io.ErrClosedPipe
		}
		room := b.limit - len(b.data)
		if room > len(p) {
			room = len(p)
		}
		b.data = append(b.data, p[:room]...)
		p = p[room:]
		written += room
		b.cond.Broadcast()
	}
	return written, nil
}

// readAt copies bytes at absolute stream offset off into p, blocking
// until data arrives. It returns io.EOF once the stream has ended and
// off is past the final byte. Reading before the committed watermark
// is a caller bug and panics.
func (b *buffer) readAt(off int64, p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if off < b.start {
		panic("read before committed watermark")
	}

	for {
		if b.err != nil {
			return 0, b.err
		}
		end := b.start + int64(len(b.data))
		if off < end {
			n := copy(p, b.data[off-b.start:])
			return n, nil
		}
		if b.eof {
			return 0, io.EOF
		}
		b.cond.Wait()
	}
}

// commit advances the watermark: bytes before off are acknowledged by
// the server and can be dropped.
func (b *buffer) commit(off int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if off <= b.start {
		return
	}
	drop := off - b.start
	if drop > int64(len(b.data)) {
		drop = int64(len(b.data))
	}
	b.data = b.data[drop:]
	b.start = off
	b.cond.Broadcast()
}

// markEOF declares the stream complete at its current length.
func (b *buffer) markEOF() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eof = true
	b.cond.Broadcast()
}

// abort kills the buffer: all blocked readers and writers return err.
func (b *buffer) abort(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
	b.cond.Broadcast()
}

// length returns the total stream length; valid once eof is marked.
func (b *buffer) length() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.start + int64(len(b.data))
}

// complete reports whether eof has been marked.
func (b *buffer) complete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eof
}
