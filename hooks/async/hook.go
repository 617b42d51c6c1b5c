// Package asynchook wraps a viewcache.Hooks so that every callback runs
// on a small worker pool instead of inline on the calling goroutine.
// Events are dropped under backpressure rather than blocking a
// ReplaceViewOrdered call or an RPC connection waiting on a full queue.
//
// usage:
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	h := server.Handler{..., Hooks: hooks}
package asynchook

import (
	"sync"
	"time"

	"github.com/canvasmirror/viewcache"
)

// Hooks wraps an inner viewcache.Hooks, dispatching every call through a
// bounded queue drained by a fixed worker pool.
type Hooks struct {
	inner viewcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ viewcache.Hooks = (*Hooks)(nil)

// New starts workers goroutines draining a queue of length qlen. Values
// <= 0 for either are replaced with sane defaults (1 worker, 1024 queue
// slots).
func New(inner viewcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the worker pool. Safe to call more
// than once.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) ReplaceOrphansRemoved(view string, count int) {
	h.try(func() { h.inner.ReplaceOrphansRemoved(view, count) })
}
func (h *Hooks) ReplaceStoreError(view string, err error) {
	h.try(func() { h.inner.ReplaceStoreError(view, err) })
}
func (h *Hooks) FetchThrottled(canvas string, retryAfter time.Duration) {
	h.try(func() { h.inner.FetchThrottled(canvas, retryAfter) })
}
func (h *Hooks) FetchPageError(canvas string, page int, err error) {
	h.try(func() { h.inner.FetchPageError(canvas, page, err) })
}
func (h *Hooks) RPCRequestRejected(reason string) {
	h.try(func() { h.inner.RPCRequestRejected(reason) })
}
func (h *Hooks) RPCConnectionClosed(err error) {
	h.try(func() { h.inner.RPCConnectionClosed(err) })
}
