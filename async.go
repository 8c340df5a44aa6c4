package gdata

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/auth"
	"github.com/GNOME/libgdata-sub004/pkg/query"
)

// Dispatcher delivers callbacks to the caller's context of choice,
// typically an event loop. DispatcherFunc adapts a plain function.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc is a Dispatcher that calls itself.
type DispatcherFunc func(fn func())

// Dispatch implements Dispatcher.
func (d DispatcherFunc) Dispatch(fn func()) { d(fn) }

// SynchronousDispatcher runs callbacks inline on the worker goroutine.
var SynchronousDispatcher Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Task is an asynchronous operation producing a T. Wait blocks until
// completion; cancel the task through the context it was started with.
type Task[T any] struct {
	group  *errgroup.Group
	result T
}

// RunTask starts fn on a goroutine and returns its handle.
func RunTask[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	group, ctx := errgroup.WithContext(ctx)
	t := &Task[T]{group: group}
	group.Go(func() error {
		var err error
		t.result, err = fn(ctx)
		return err
	})
	return t
}

// Wait blocks until the task finishes and returns its outcome.
func (t *Task[T]) Wait() (T, error) {
	err := t.group.Wait()
	return t.result, err
}

// OnDone arranges for cb to run on d when the task finishes.
func (t *Task[T]) OnDone(d Dispatcher, cb func(T, error)) {
	go func() {
		result, err := t.Wait()
		d.Dispatch(func() { cb(result, err) })
	}()
}

// QueryFeedAsync runs QueryFeed on a goroutine. Progress callbacks are
// dispatched through d in parse order, before the completion callback
// a caller may attach with OnDone.
func (s *Service) QueryFeedAsync(ctx context.Context, domain *auth.Domain, feedURI string, q query.ParamSource, factory atom.EntryFactory, d Dispatcher, progress ProgressFunc) *Task[*atom.Feed] {
	dispatched := progress
	if progress != nil {
		dispatched = func(entry atom.EntryLike, index, total int) {
			d.Dispatch(func() { progress(entry, index, total) })
		}
	}
	return RunTask(ctx, func(ctx context.Context) (*atom.Feed, error) {
		return s.QueryFeed(ctx, domain, feedURI, q, factory, dispatched)
	})
}

// GetEntryAsync runs GetEntry on a goroutine.
func (s *Service) GetEntryAsync(ctx context.Context, domain *auth.Domain, uri, etag string, factory atom.EntryFactory) *Task[atom.EntryLike] {
	return RunTask(ctx, func(ctx context.Context) (atom.EntryLike, error) {
		return s.GetEntry(ctx, domain, uri, etag, factory)
	})
}

// InsertEntryAsync runs InsertEntry on a goroutine.
func (s *Service) InsertEntryAsync(ctx context.Context, domain *auth.Domain, uploadURI string, entry atom.EntryLike, factory atom.EntryFactory) *Task[atom.EntryLike] {
	return RunTask(ctx, func(ctx context.Context) (atom.EntryLike, error) {
		return s.InsertEntry(ctx, domain, uploadURI, entry, factory)
	})
}

// UpdateEntryAsync runs UpdateEntry on a goroutine.
func (s *Service) UpdateEntryAsync(ctx context.Context, domain *auth.Domain, entry atom.EntryLike, factory atom.EntryFactory) *Task[atom.EntryLike] {
	return RunTask(ctx, func(ctx context.Context) (atom.EntryLike, error) {
		return s.UpdateEntry(ctx, domain, entry, factory)
	})
}

// DeleteEntryAsync runs DeleteEntry on a goroutine.
func (s *Service) DeleteEntryAsync(ctx context.Context, domain *auth.Domain, entry atom.EntryLike) *Task[struct{}] {
	return RunTask(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.DeleteEntry(ctx, domain, entry)
	})
}
