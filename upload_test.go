package gdata_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

func TestUploadStreamPlain(t *testing.T) {
	var gotSlug, gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSlug = r.Header.Get("Slug")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(testEntryXML))
	}))
	defer server.Close()

	s := newTestService(t)
	stream := s.UploadStream(context.Background(), testDomain, http.MethodPost, server.URL,
		"image/png", "photo.png", nil, nil)

	_, err := stream.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	assert.Equal(t, "photo.png", gotSlug)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, "png bytes", string(gotBody))

	entry, err := stream.ServerEntry()
	require.NoError(t, err)
	assert.Equal(t, "One", entry.EntryBase().Title)
}

func TestUploadStreamMultipart(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(testEntryXML))
	}))
	defer server.Close()

	s := newTestService(t)
	entry := &atom.Entry{Title: "Holiday photo"}
	stream := s.UploadStream(context.Background(), testDomain, http.MethodPost, server.URL,
		"image/png", "photo.png", entry, nil)

	_, err := stream.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	mediaType, params, err := mime.ParseMediaType(gotContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/related", mediaType)

	reader := multipart.NewReader(bytes.NewReader(gotBody), params["boundary"])

	entryPart, err := reader.NextPart()
	require.NoError(t, err)
	entryBody, _ := io.ReadAll(entryPart)
	assert.Contains(t, string(entryBody), "Holiday photo")

	mediaPart, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaPart.Header.Get("Content-Type"))
	mediaBody, _ := io.ReadAll(mediaPart)
	assert.Equal(t, "png bytes", string(mediaBody))
}

func TestUploadStreamServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s := newTestService(t)
	stream := s.UploadStream(context.Background(), testDomain, http.MethodPost, server.URL,
		"image/png", "photo.png", nil, nil)

	_, _ = stream.Write([]byte("data"))
	err := stream.Close()
	require.Error(t, err)

	_, err = stream.ServerEntry()
	assert.Error(t, err)
}

// resumableServer implements the resumable upload protocol: an
// initiation request answered with a session URI, then chunk PUTs.
type resumableServer struct {
	t *testing.T

	mu        sync.Mutex
	chunks    []string // Content-Range header of each chunk received
	received  bytes.Buffer
	dropFirst bool // acknowledge only half of the first chunk
}

func (rs *resumableServer) handler(sessionPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		defer rs.mu.Unlock()

		if r.URL.Path != sessionPath {
			// Initiation request.
			assert.NotEmpty(rs.t, r.Header.Get("X-Upload-Content-Type"))
			assert.NotEmpty(rs.t, r.Header.Get("X-Upload-Content-Length"))
			w.Header().Set("Location", "http://"+r.Host+sessionPath)
			w.WriteHeader(http.StatusOK)
			return
		}

		contentRange := r.Header.Get("Content-Range")
		rs.chunks = append(rs.chunks, contentRange)
		body, _ := io.ReadAll(r.Body)

		var first, last, total int64
		_, err := fmt.Sscanf(contentRange, "bytes %d-%d/%d", &first, &last, &total)
		require.NoError(rs.t, err)

		if rs.dropFirst && len(rs.chunks) == 1 {
			// Acknowledge only the first half; the client must resume
			// from the watermark.
			half := first + (last-first+1)/2
			rs.received.Write(body[:half-first])
			w.Header().Set("Range", fmt.Sprintf("bytes=0-%d", half-1))
			w.WriteHeader(http.StatusPermanentRedirect)
			return
		}

		rs.received.Write(body)
		if last+1 < total {
			w.Header().Set("Range", fmt.Sprintf("bytes=0-%d", last))
			w.WriteHeader(http.StatusPermanentRedirect)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(testEntryXML))
	}
}

func TestResumableUpload(t *testing.T) {
	rs := &resumableServer{t: t}
	server := httptest.NewServer(rs.handler("/session"))
	defer server.Close()

	payload := bytes.Repeat([]byte("abcdefgh"), 96*1024) // 768 KiB: one full chunk plus a partial
	s := newTestService(t)
	stream := s.ResumableUploadStream(context.Background(), testDomain, http.MethodPost, server.URL,
		"image/png", int64(len(payload)), "photo.png", nil, nil)

	for sent := 0; sent < len(payload); sent += 64 * 1024 {
		_, err := stream.Write(payload[sent : sent+64*1024])
		require.NoError(t, err)
	}
	require.NoError(t, stream.Close())

	assert.Equal(t, []string{
		fmt.Sprintf("bytes 0-524287/%d", len(payload)),
		fmt.Sprintf("bytes 524288-%d/%d", len(payload)-1, len(payload)),
	}, rs.chunks)
	assert.True(t, bytes.Equal(payload, rs.received.Bytes()))

	entry, err := stream.ServerEntry()
	require.NoError(t, err)
	assert.Equal(t, "One", entry.EntryBase().Title)
}

func TestResumableUploadResumesFromWatermark(t *testing.T) {
	rs := &resumableServer{t: t, dropFirst: true}
	server := httptest.NewServer(rs.handler("/session"))
	defer server.Close()

	payload := bytes.Repeat([]byte("x"), 512*1024)
	s := newTestService(t)
	stream := s.ResumableUploadStream(context.Background(), testDomain, http.MethodPost, server.URL,
		"image/png", int64(len(payload)), "photo.png", nil, nil)

	_, err := stream.Write(payload)
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	// The second chunk restarts at the server's watermark, not at the
	// end of the first chunk.
	require.Len(t, rs.chunks, 2)
	assert.Equal(t, "bytes 0-524287/524288", rs.chunks[0])
	assert.Equal(t, "bytes 262144-524287/524288", rs.chunks[1])
	assert.Equal(t, len(payload), rs.received.Len())
}

func TestResumableUploadShortStream(t *testing.T) {
	rs := &resumableServer{t: t}
	server := httptest.NewServer(rs.handler("/session"))
	defer server.Close()

	s := newTestService(t)
	stream := s.ResumableUploadStream(context.Background(), testDomain, http.MethodPost, server.URL,
		"image/png", 1024, "photo.png", nil, nil)

	_, err := stream.Write([]byte("only a few bytes"))
	require.NoError(t, err)

	err = stream.Close()
	require.Error(t, err, "declared length was never reached")
	assert.Contains(t, strings.ToLower(err.Error()), "short")
}

func TestResumableUploadCancellation(t *testing.T) {
	rs := &resumableServer{t: t}
	server := httptest.NewServer(rs.handler("/session"))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := newTestService(t)
	stream := s.ResumableUploadStream(ctx, testDomain, http.MethodPost, server.URL,
		"image/png", 1024, "photo.png", nil, nil)

	// The worker blocks waiting for a full chunk; cancelling must
	// unblock it and surface as a cancellation, not a short stream.
	_, err := stream.Write([]byte("a few bytes"))
	require.NoError(t, err)
	cancel()

	err = stream.Close()
	assert.ErrorIs(t, err, errors.ErrCanceled)

	_, err = stream.Write([]byte("more"))
	assert.ErrorIs(t, err, errors.ErrCanceled)
}
