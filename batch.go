package gdata

import (
	"context"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"sync"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/auth"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/logging"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// Batchable is implemented by services whose feeds accept batch
// operations.
type Batchable interface {
	// BatchFeedURI returns the URI batch feeds are posted to.
	BatchFeedURI() string

	// SupportsBatchOperation reports whether the feed accepts the given
	// operation kind.
	SupportsBatchOperation(op atom.BatchOperationType) bool
}

// BatchCallback receives the outcome of one batched operation. A
// successful deletion delivers (nil, nil); the other operations
// deliver the server's copy of the entry. When the whole batch fails,
// every callback receives the batch's error.
type BatchCallback func(entry atom.EntryLike, err error)

type batchOp struct {
	id       int
	op       atom.BatchOperationType
	entry    atom.EntryLike
	entryURI string
	factory  atom.EntryFactory
	callback BatchCallback
	done     bool
}

// BatchOperation accumulates operations and runs them as a single
// batch feed request. A BatchOperation is single-use: Run may be
// called once. It is not safe for concurrent mutation.
type BatchOperation struct {
	service *Service
	domain  *auth.Domain
	feedURI string
	owner   Batchable

	mu  sync.Mutex
	ops []*batchOp
	ran bool
}

// NewBatchOperation starts an empty batch against the batch feed at
// feedURI.
func (s *Service) NewBatchOperation(domain *auth.Domain, feedURI string) *BatchOperation {
	return &BatchOperation{service: s, domain: domain, feedURI: feedURI}
}

// NewBatch starts an empty batch against svc's batch feed. Operation
// kinds the feed does not accept fail the batch at Run before anything
// is sent.
func (s *Service) NewBatch(domain *auth.Domain, svc Batchable) *BatchOperation {
	b := s.NewBatchOperation(domain, svc.BatchFeedURI())
	b.owner = svc
	return b
}

// add appends an operation, assigning the next id. Ids start at 1; 0
// is kept free so an unstamped entry is distinguishable.
func (b *BatchOperation) add(op *batchOp) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	op.id = len(b.ops) + 1
	b.ops = append(b.ops, op)
	return op.id
}

// AddQuery batches a retrieval of the entry at entryURI, parsed with
// factory. It returns the operation's id within the batch.
func (b *BatchOperation) AddQuery(entryURI string, factory atom.EntryFactory, cb BatchCallback) int {
	return b.add(&batchOp{op: atom.BatchQuery, entryURI: entryURI, factory: factory, callback: cb})
}

// AddInsertion batches the creation of entry.
func (b *BatchOperation) AddInsertion(entry atom.EntryLike, cb BatchCallback) int {
	return b.add(&batchOp{op: atom.BatchInsertion, entry: entry, factory: sameTypeFactory(entry), callback: cb})
}

// AddUpdate batches an update of entry, guarded by its ETag.
func (b *BatchOperation) AddUpdate(entry atom.EntryLike, cb BatchCallback) int {
	return b.add(&batchOp{op: atom.BatchUpdate, entry: entry, factory: sameTypeFactory(entry), callback: cb})
}

// AddDeletion batches the removal of entry.
func (b *BatchOperation) AddDeletion(entry atom.EntryLike, cb BatchCallback) int {
	return b.add(&batchOp{op: atom.BatchDeletion, entry: entry, callback: cb})
}

// sameTypeFactory builds fresh instances of entry's concrete type for
// parsing the server's copy.
func sameTypeFactory(entry atom.EntryLike) atom.EntryFactory {
	t := reflect.TypeOf(entry).Elem()
	return func() atom.EntryLike {
		return reflect.New(t).Interface().(atom.EntryLike)
	}
}

// batchFeed exists to declare the batch namespace on the synthesized
// feed document.
type batchFeed struct {
	atom.Feed
}

func (f *batchFeed) Namespaces(ns map[string]string) {
	f.Feed.Namespaces(ns)
	ns["batch"] = parsable.NSBatch
	ns["gd"] = parsable.NSGData
}

// Run sends the batch and invokes every operation's callback exactly
// once. The returned error reports a whole-batch failure, which has
// already been delivered to the callbacks; per-operation failures are
// reported only through the callbacks.
func (b *BatchOperation) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.ran {
		b.mu.Unlock()
		return errors.New("batch operation already run")
	}
	b.ran = true
	ops := b.ops
	b.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}

	// A feed that rejects one of the batched kinds fails the whole
	// batch before anything is sent.
	if b.owner != nil {
		for _, op := range ops {
			if !b.owner.SupportsBatchOperation(op.op) {
				err := &errors.BatchError{OperationID: op.id, Err: errors.ErrBatchUnsupported}
				for _, o := range ops {
					o.done = true
					o.callback(nil, err)
				}
				return err
			}
		}
	}

	body := b.synthesizeFeed(ops)
	err := b.post(ctx, ops, body)
	if err != nil {
		// The batch as a whole failed: every callback hears about it.
		for _, op := range ops {
			if !op.done {
				op.done = true
				op.callback(nil, err)
			}
		}
		return err
	}

	// Operations the response never mentioned still get their callback.
	for _, op := range ops {
		if !op.done {
			op.done = true
			op.callback(nil, &errors.BatchError{
				OperationID: op.id,
				Err:         errors.New("no response for batched operation"),
			})
		}
	}
	return nil
}

func (b *BatchOperation) synthesizeFeed(ops []*batchOp) []byte {
	feed := &batchFeed{}
	feed.Title = "Batch operation"
	for _, op := range ops {
		entry := op.entry
		if op.op == atom.BatchQuery {
			queried := &atom.Entry{}
			queried.ID = op.entryURI
			entry = queried
		}
		entry.EntryBase().SetBatchData(op.id, op.op)
		feed.Entries = append(feed.Entries, entry)
	}
	return []byte(parsable.ToXML(feed))
}

func (b *BatchOperation) post(ctx context.Context, ops []*batchOp, body []byte) error {
	resp, err := b.service.send(ctx, b.domain, &request{
		method:      http.MethodPost,
		uri:         b.feedURI,
		body:        body,
		contentType: parsable.ContentTypeAtomXML,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := b.service.checkResponse(resp); err != nil {
		return err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError(http.MethodPost, b.feedURI, err)
	}
	return b.correlate(ctx, ops, raw)
}

// correlate walks the response feed and matches each entry back to its
// operation by batch id, invoking the callbacks.
func (b *BatchOperation) correlate(ctx context.Context, ops []*batchOp, body []byte) error {
	root, err := parsable.ParseXMLDocument(body)
	if err != nil {
		return err
	}
	if root.Name != "feed" || !root.InNamespace(parsable.NSAtom) {
		return errors.NewParseError(errors.ParseUnhandledContent, root.Name)
	}

	logger := logging.FromContext(ctx)

	for _, child := range root.Children {
		if child.Name != "entry" || !child.InNamespace(parsable.NSAtom) {
			continue
		}
		id, status := batchMetadata(child)
		op := findOp(ops, id)
		if op == nil || op.done {
			logger.Warn().Int("batch_id", id).Msg("unmatched entry in batch response")
			continue
		}
		op.done = true
		op.callback(b.resolve(op, child, status))
	}
	return nil
}

// batchStatus is the decoded batch:status element of a response entry.
type batchStatus struct {
	code        int
	reason      string
	contentType string
	body        string
}

func batchMetadata(entryNode *parsable.XMLNode) (id int, status batchStatus) {
	for _, child := range entryNode.Children {
		if !child.InNamespace(parsable.NSBatch) {
			continue
		}
		switch child.Name {
		case "id":
			id, _ = strconv.Atoi(child.Text)
		case "status":
			status.code, _ = strconv.Atoi(child.Attr("code"))
			status.reason = child.Attr("reason")
			status.contentType = child.Attr("content-type")
			status.body = child.Text
		}
	}
	return id, status
}

func findOp(ops []*batchOp, id int) *batchOp {
	for _, op := range ops {
		if op.id == id {
			return op
		}
	}
	return nil
}

// resolve turns one response entry into the operation's outcome.
func (b *BatchOperation) resolve(op *batchOp, entryNode *parsable.XMLNode, status batchStatus) (atom.EntryLike, error) {
	if status.code < 200 || status.code >= 300 {
		cause := b.service.responseError(status.code, status.contentType, []byte(status.body))
		return nil, &errors.BatchError{OperationID: op.id, Err: cause}
	}
	if op.op == atom.BatchDeletion {
		return nil, nil
	}

	entry := op.factory()
	if err := parsable.ParseNode(entryNode, entry); err != nil {
		return nil, &errors.BatchError{OperationID: op.id, Err: err}
	}
	return entry, nil
}

// RunAsync runs the batch on a goroutine, dispatching the callbacks
// and the completion function through d.
func (b *BatchOperation) RunAsync(ctx context.Context, d Dispatcher, complete func(error)) {
	go func() {
		err := b.runDispatched(ctx, d)
		d.Dispatch(func() { complete(err) })
	}()
}

// runDispatched wraps every callback so it fires on the dispatcher
// instead of the worker goroutine.
func (b *BatchOperation) runDispatched(ctx context.Context, d Dispatcher) error {
	b.mu.Lock()
	for _, op := range b.ops {
		cb := op.callback
		op.callback = func(entry atom.EntryLike, err error) {
			d.Dispatch(func() { cb(entry, err) })
		}
	}
	b.mu.Unlock()
	return b.Run(ctx)
}
