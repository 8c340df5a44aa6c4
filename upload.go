package gdata

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/auth"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// resumableChunkSize is the unit resumable sessions upload in. The
// protocol requires a multiple of 256 KiB.
const resumableChunkSize = 512 * 1024

// UploadStream writes a media document to a service. Bytes written go
// out on a worker goroutine; Close finishes the transfer and blocks
// until the server has answered, after which ServerEntry returns the
// entry the server created or updated.
type UploadStream struct {
	service     *Service
	domain      *auth.Domain
	ctx         context.Context
	cancel      context.CancelFunc
	method      string
	uri         string
	contentType string
	slug        string
	entry       atom.EntryLike
	factory     atom.EntryFactory

	pipe *io.PipeWriter
	buf  *buffer

	done chan struct{}

	mu          sync.Mutex
	serverEntry atom.EntryLike
	workerErr   error
	closed      bool
}

// UploadStream starts a single-request media upload: method (POST for
// insert, PUT for media updates) against uploadURI. A non-nil entry
// rides along in a multipart body; otherwise the filename goes in a
// Slug header. factory parses the entry the server returns.
func (s *Service) UploadStream(ctx context.Context, domain *auth.Domain, method, uploadURI, contentType, slug string, entry atom.EntryLike, factory atom.EntryFactory) *UploadStream {
	ctx, cancel := context.WithCancel(ctx)
	u := &UploadStream{
		service:     s,
		domain:      domain,
		ctx:         ctx,
		cancel:      cancel,
		method:      method,
		uri:         uploadURI,
		contentType: contentType,
		slug:        slug,
		entry:       entry,
		factory:     factory,
		done:        make(chan struct{}),
	}
	reader, writer := io.Pipe()
	u.pipe = writer
	go u.singleShotWorker(reader)
	return u
}

// ResumableUploadStream starts a resumable upload session:
// an initiation request carrying the media's type and total length,
// then contentLength bytes in chunks that the server acknowledges
// incrementally. A failed chunk is re-sent from the server's
// acknowledged watermark.
func (s *Service) ResumableUploadStream(ctx context.Context, domain *auth.Domain, method, uploadURI, contentType string, contentLength int64, slug string, entry atom.EntryLike, factory atom.EntryFactory) *UploadStream {
	ctx, cancel := context.WithCancel(ctx)
	u := &UploadStream{
		service:     s,
		domain:      domain,
		ctx:         ctx,
		cancel:      cancel,
		method:      method,
		uri:         uploadURI,
		contentType: contentType,
		slug:        slug,
		entry:       entry,
		factory:     factory,
		buf:         newBuffer(0),
		done:        make(chan struct{}),
	}
	// Cancellation must reach writers and the worker blocked on the
	// buffer, not just the next request.
	go func() {
		<-ctx.Done()
		u.buf.abort(errors.WrapCanceled(ctx.Err()))
	}()
	go u.resumableWorker(contentLength)
	return u
}

// Write implements io.Writer.
func (u *UploadStream) Write(p []byte) (int, error) {
	if err := u.ctx.Err(); err != nil {
		return 0, errors.WrapCanceled(err)
	}
	if u.buf != nil {
		return u.buf.write(p)
	}
	return u.pipe.Write(p)
}

// Close implements io.Closer: it marks the stream complete and blocks
// until the transfer finishes. The returned error is the transfer's
// outcome; ServerEntry holds the resulting entry on success.
func (u *UploadStream) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		<-u.done
		return u.err()
	}
	u.closed = true
	u.mu.Unlock()

	if u.buf != nil {
		// After cancellation the worker must see the cancel, not a
		// clean end of stream.
		if err := u.ctx.Err(); err != nil {
			u.buf.abort(errors.WrapCanceled(err))
		} else {
			u.buf.markEOF()
		}
	} else {
		u.pipe.Close()
	}
	<-u.done
	return u.err()
}

func (u *UploadStream) err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.workerErr
}

// ServerEntry returns the entry the server responded with. Valid after
// Close has returned nil.
func (u *UploadStream) ServerEntry() (atom.EntryLike, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.workerErr != nil {
		return nil, u.workerErr
	}
	return u.serverEntry, nil
}

func (u *UploadStream) finish(entry atom.EntryLike, err error) {
	u.mu.Lock()
	u.serverEntry = entry
	u.workerErr = err
	u.mu.Unlock()
	if err != nil {
		if u.buf != nil {
			u.buf.abort(err)
		} else {
			u.pipe.Close()
		}
	}
	close(u.done)
	u.cancel()
}

// singleShotWorker streams the pipe out as one request, multipart when
// an entry accompanies the media.
func (u *UploadStream) singleShotWorker(media *io.PipeReader) {
	var body io.Reader = media
	contentType := u.contentType

	if u.entry != nil {
		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)
		contentType = "multipart/related; boundary=" + mw.Boundary()
		go func() {
			err := writeMultipartBody(mw, u.entry, u.contentType, media)
			pw.CloseWithError(err)
		}()
		body = pr
	}

	req, err := http.NewRequestWithContext(u.ctx, u.method, u.uri, body)
	if err != nil {
		u.finish(nil, errors.NewNetworkError(u.method, u.uri, err))
		return
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("GData-Version", u.service.protocolVersion)
	req.Header.Set("User-Agent", u.service.userAgentValue())
	if u.slug != "" && u.entry == nil {
		req.Header.Set("Slug", u.slug)
	}
	if u.service.authorizer != nil {
		if err := u.service.authorizer.ProcessRequest(u.domain, req); err != nil {
			u.finish(nil, err)
			return
		}
	}

	resp, err := u.service.bareClient().Do(req)
	if err != nil {
		if u.ctx.Err() != nil {
			err = errors.WrapCanceled(u.ctx.Err())
		} else {
			err = errors.NewNetworkError(u.method, u.uri, err)
		}
		// Unblock the writer; the request body is dead.
		media.CloseWithError(err)
		u.finish(nil, err)
		return
	}
	defer resp.Body.Close()

	if err := u.service.checkResponse(resp); err != nil {
		media.CloseWithError(err)
		u.finish(nil, err)
		return
	}
	entry, err := u.service.parseEntryResponse(resp, u.factory)
	u.finish(entry, err)
}

// writeMultipartBody emits the entry part followed by the media part.
func writeMultipartBody(mw *multipart.Writer, entry atom.EntryLike, mediaType string, media io.Reader) error {
	entryHeader := textproto.MIMEHeader{}
	entryHeader.Set("Content-Type", parsable.ContentTypeAtomXML)
	part, err := mw.CreatePart(entryHeader)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(part, parsable.ToXML(entry)); err != nil {
		return err
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", mediaType)
	part, err = mw.CreatePart(mediaHeader)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, media); err != nil {
		return err
	}
	return mw.Close()
}

// resumableWorker initiates the session and pumps chunks until the
// server has acknowledged the whole stream.
func (u *UploadStream) resumableWorker(total int64) {
	sessionURI, err := u.initiateSession(total)
	if err != nil {
		u.finish(nil, err)
		return
	}

	var offset int64
	chunk := make([]byte, resumableChunkSize)
	for offset < total {
		size := int64(len(chunk))
		if remaining := total - offset; remaining < size {
			size = remaining
		}
		if err := u.fillChunk(chunk[:size], offset); err != nil {
			u.finish(nil, err)
			return
		}

		entry, newOffset, err := u.sendChunk(sessionURI, chunk[:size], offset, total)
		if err != nil {
			u.finish(nil, err)
			return
		}
		if entry != nil {
			u.finish(entry, nil)
			return
		}
		u.buf.commit(newOffset)
		offset = newOffset
	}

	u.finish(nil, errors.NewProtocolError(0, "upload session ended without a final response"))
}

func (u *UploadStream) initiateSession(total int64) (string, error) {
	var body []byte
	contentType := ""
	if u.entry != nil {
		body = []byte(parsable.ToXML(u.entry))
		contentType = parsable.ContentTypeAtomXML
	}

	header := http.Header{}
	header.Set("X-Upload-Content-Type", u.contentType)
	header.Set("X-Upload-Content-Length", strconv.FormatInt(total, 10))
	if u.slug != "" && u.entry == nil {
		header.Set("Slug", u.slug)
	}

	resp, err := u.service.send(u.ctx, u.domain, &request{
		method:      u.method,
		uri:         u.uri,
		body:        body,
		contentType: contentType,
		header:      header,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := u.service.checkResponse(resp); err != nil {
		return "", err
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.NewProtocolError(resp.StatusCode, "upload initiation returned no session URI")
	}
	return location, nil
}

// fillChunk blocks until the chunk's span of the stream is buffered.
func (u *UploadStream) fillChunk(chunk []byte, offset int64) error {
	filled := 0
	for filled < len(chunk) {
		n, err := u.buf.readAt(offset+int64(filled), chunk[filled:])
		if err != nil {
			if err == io.EOF {
				return errors.NewProtocolError(0, "stream ended short of its declared length")
			}
			return err
		}
		filled += n
	}
	return nil
}

// sendChunk uploads one chunk. It returns the final entry when the
// server completed the upload, or the next offset to send from: the
// server's acknowledgment watermark, which on a resume may be behind
// the chunk just sent.
func (u *UploadStream) sendChunk(sessionURI string, chunk []byte, offset, total int64) (atom.EntryLike, int64, error) {
	header := http.Header{}
	header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, offset+int64(len(chunk))-1, total))

	resp, err := u.service.sendOnce(u.ctx, u.domain, &request{
		method:      http.MethodPut,
		uri:         sessionURI,
		body:        chunk,
		contentType: u.contentType,
		header:      header,
	})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	// 308 acknowledges a prefix of the stream and keeps the session
	// open. Its Range header is the watermark to resume from.
	if resp.StatusCode == http.StatusPermanentRedirect {
		watermark, err := parseRangeEnd(resp.Header.Get("Range"))
		if err != nil {
			return nil, 0, err
		}
		return nil, watermark, nil
	}

	if err := u.service.checkResponse(resp); err != nil {
		return nil, 0, err
	}
	entry, err := u.service.parseEntryResponse(resp, u.factory)
	if err != nil {
		return nil, 0, err
	}
	return entry, total, nil
}

// parseRangeEnd extracts the next send offset from a "Range:
// bytes=0-N" acknowledgment. An absent header means nothing has been
// received yet.
func parseRangeEnd(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	rest, ok := strings.CutPrefix(value, "bytes=")
	if !ok {
		return 0, errors.NewProtocolError(308, "malformed acknowledgment range")
	}
	_, endText, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, errors.NewProtocolError(308, "malformed acknowledgment range")
	}
	end, err := strconv.ParseInt(endText, 10, 64)
	if err != nil {
		return 0, errors.NewProtocolError(308, "malformed acknowledgment range")
	}
	return end + 1, nil
}
