package gdata_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdata "github.com/GNOME/libgdata-sub004"
	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

const batchResponseXML = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:batch='http://schemas.google.com/gdata/batch' xmlns:gd='http://schemas.google.com/g/2005'>
	<id>http://example.com/feed/batch</id>
	<entry>
		<batch:id>1</batch:id>
		<batch:status code='201' reason='Created'/>
		<batch:operation type='insert'/>
		<id>http://example.com/e/new</id>
		<title>Inserted</title>
	</entry>
	<entry>
		<batch:id>2</batch:id>
		<batch:status code='412' reason='Precondition Failed'/>
		<batch:operation type='update'/>
		<id>http://example.com/e/stale</id>
	</entry>
	<entry>
		<batch:id>3</batch:id>
		<batch:status code='200' reason='Success'/>
		<batch:operation type='delete'/>
		<id>http://example.com/e/gone</id>
	</entry>
</feed>`

func TestBatchRun(t *testing.T) {
	var requestBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requestBody = string(body)
		_, _ = w.Write([]byte(batchResponseXML))
	}))
	defer server.Close()

	s := newTestService(t)
	batch := s.NewBatchOperation(testDomain, server.URL)

	var insertCalls, updateCalls, deleteCalls int
	var insertedTitle string
	var updateErr error

	inserted := &atom.Entry{Title: "Inserted"}
	batch.AddInsertion(inserted, func(entry atom.EntryLike, err error) {
		insertCalls++
		require.NoError(t, err)
		insertedTitle = entry.EntryBase().Title
	})

	stale := &atom.Entry{ID: "http://example.com/e/stale", ETag: `W/"stale."`}
	batch.AddUpdate(stale, func(entry atom.EntryLike, err error) {
		updateCalls++
		updateErr = err
	})

	gone := &atom.Entry{ID: "http://example.com/e/gone"}
	batch.AddDeletion(gone, func(entry atom.EntryLike, err error) {
		deleteCalls++
		assert.Nil(t, entry)
		assert.NoError(t, err)
	})

	require.NoError(t, batch.Run(context.Background()))

	assert.Equal(t, 1, insertCalls, "each callback fires exactly once")
	assert.Equal(t, 1, updateCalls)
	assert.Equal(t, 1, deleteCalls)

	assert.Equal(t, "Inserted", insertedTitle)

	require.Error(t, updateErr)
	assert.ErrorIs(t, updateErr, errors.ErrConflict)
	var be *errors.BatchError
	require.ErrorAs(t, updateErr, &be)
	assert.Equal(t, 2, be.OperationID)

	// The synthesized request feed carries batch ids and operations.
	assert.Contains(t, requestBody, "xmlns:batch='http://schemas.google.com/gdata/batch'")
	assert.Contains(t, requestBody, "<batch:id>1</batch:id>")
	assert.Contains(t, requestBody, "<batch:operation type='insert'/>")
	assert.Contains(t, requestBody, "<batch:operation type='update'/>")
	assert.Contains(t, requestBody, "<batch:operation type='delete'/>")
}

func TestBatchQueryOperation(t *testing.T) {
	response := `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:batch='http://schemas.google.com/gdata/batch'>
	<id>http://example.com/feed/batch</id>
	<entry>
		<batch:id>1</batch:id>
		<batch:status code='200' reason='Success'/>
		<id>http://example.com/e/1</id>
		<title>Fetched</title>
	</entry>
</feed>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "<batch:operation type='query'/>")
		assert.Contains(t, string(body), "<id>http://example.com/e/1</id>")
		_, _ = w.Write([]byte(response))
	}))
	defer server.Close()

	s := newTestService(t)
	batch := s.NewBatchOperation(testDomain, server.URL)

	var got atom.EntryLike
	id := batch.AddQuery("http://example.com/e/1", nil, func(entry atom.EntryLike, err error) {
		require.NoError(t, err)
		got = entry
	})
	assert.Equal(t, 1, id)

	require.NoError(t, batch.Run(context.Background()))
	require.NotNil(t, got)
	assert.Equal(t, "Fetched", got.EntryBase().Title)
}

func TestBatchWholeFailureReachesEveryCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := newTestService(t)
	batch := s.NewBatchOperation(testDomain, server.URL)

	var errs []error
	for i := 0; i < 3; i++ {
		batch.AddDeletion(&atom.Entry{ID: "x"}, func(entry atom.EntryLike, err error) {
			errs = append(errs, err)
		})
	}

	err := batch.Run(context.Background())
	require.Error(t, err)
	require.Len(t, errs, 3)
	for _, cbErr := range errs {
		assert.ErrorIs(t, cbErr, errors.ErrUnavailable)
	}
}

func TestBatchUnansweredOperationGetsError(t *testing.T) {
	response := strings.Replace(batchResponseXML, "<batch:id>3</batch:id>", "<batch:id>99</batch:id>", 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(response))
	}))
	defer server.Close()

	s := newTestService(t)
	batch := s.NewBatchOperation(testDomain, server.URL)

	batch.AddInsertion(&atom.Entry{Title: "a"}, func(atom.EntryLike, error) {})
	batch.AddUpdate(withEditLink(&atom.Entry{ID: "b"}), func(atom.EntryLike, error) {})

	var deleteErr error
	batch.AddDeletion(&atom.Entry{ID: "c"}, func(entry atom.EntryLike, err error) {
		deleteErr = err
	})

	require.NoError(t, batch.Run(context.Background()))
	require.Error(t, deleteErr)
	var be *errors.BatchError
	require.ErrorAs(t, deleteErr, &be)
	assert.Equal(t, 3, be.OperationID)
}

func TestBatchRunTwice(t *testing.T) {
	s := newTestService(t)
	batch := s.NewBatchOperation(testDomain, "http://example.com/feed/batch")

	require.NoError(t, batch.Run(context.Background()))
	assert.Error(t, batch.Run(context.Background()))
}

func TestBatchRunAsyncDispatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(batchResponseXML))
	}))
	defer server.Close()

	s := newTestService(t)
	batch := s.NewBatchOperation(testDomain, server.URL)
	batch.AddInsertion(&atom.Entry{Title: "Inserted"}, func(atom.EntryLike, error) {})
	batch.AddUpdate(withEditLink(&atom.Entry{ID: "http://example.com/e/stale"}), func(atom.EntryLike, error) {})
	batch.AddDeletion(&atom.Entry{ID: "http://example.com/e/gone"}, func(atom.EntryLike, error) {})

	done := make(chan error, 1)
	batch.RunAsync(context.Background(), gdata.SynchronousDispatcher, func(err error) {
		done <- err
	})
	assert.NoError(t, <-done)
}

func withEditLink(e *atom.Entry) *atom.Entry {
	e.AddLink(atom.NewLink("http://example.com/edit", atom.RelEdit))
	return e
}

// queryOnlyFeed accepts batched queries and nothing else.
type queryOnlyFeed struct {
	uri string
}

func (f queryOnlyFeed) BatchFeedURI() string { return f.uri }

func (f queryOnlyFeed) SupportsBatchOperation(op atom.BatchOperationType) bool {
	return op == atom.BatchQuery
}

func TestBatchUnsupportedOperationFailsFast(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	s := newTestService(t)
	batch := s.NewBatch(testDomain, queryOnlyFeed{uri: server.URL})

	var queryErr, updateErr error
	batch.AddQuery("http://example.com/e/1", nil, func(_ atom.EntryLike, err error) { queryErr = err })
	batch.AddUpdate(withEditLink(&atom.Entry{ID: "b"}), func(_ atom.EntryLike, err error) { updateErr = err })

	err := batch.Run(context.Background())
	require.ErrorIs(t, err, errors.ErrBatchUnsupported)

	var batchErr *errors.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.OperationID)

	// Every callback heard about the failure, and nothing was sent.
	assert.ErrorIs(t, queryErr, errors.ErrBatchUnsupported)
	assert.ErrorIs(t, updateErr, errors.ErrBatchUnsupported)
	assert.Equal(t, 0, requests)
}
