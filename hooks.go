package viewcache

import "time"

// Hooks are lightweight callbacks for high-signal events raised while
// reconciling views, fetching upstream resources, or serving RPC
// connections. Implementations must be cheap and non-blocking; buffer
// or drop under backpressure rather than perform I/O inline (see
// hooks/async for a ready-made buffering wrapper).
type Hooks interface {
	// ReplaceOrphansRemoved reports how many stale keys a
	// ReplaceViewOrdered pass removed from a view that the latest
	// stream no longer mentioned.
	ReplaceOrphansRemoved(view string, count int)
	// ReplaceStoreError reports a store failure mid-replace. The view
	// may be left in a partially-reconciled state.
	ReplaceStoreError(view string, err error)
	// FetchThrottled reports a throttling condition: a 403 response
	// from upstream, an X-Rate-Limit-Remaining value at or below the
	// fetcher's configured floor, or the server's request budget
	// refusing a Fetch or a page's cost.
	FetchThrottled(canvas string, retryAfter time.Duration)
	// FetchPageError reports a failed page fetch that the fetcher is
	// about to retry or give up on.
	FetchPageError(canvas string, page int, err error)
	// RPCRequestRejected reports a malformed or unauthorized RPC
	// request that was rejected before dispatch.
	RPCRequestRejected(reason string)
	// RPCConnectionClosed reports a served RPC connection ending,
	// with a nil err on graceful close.
	RPCConnectionClosed(err error)
}

// NopHooks is a default no-op.
type NopHooks struct{}

func (NopHooks) ReplaceOrphansRemoved(string, int)  {}
func (NopHooks) ReplaceStoreError(string, error)    {}
func (NopHooks) FetchThrottled(string, time.Duration) {}
func (NopHooks) FetchPageError(string, int, error)  {}
func (NopHooks) RPCRequestRejected(string)          {}
func (NopHooks) RPCConnectionClosed(error)          {}

// Multi returns a Hooks that fans out to all provided hooks, in order.
// Nil entries are ignored. Panics from a hook propagate to the caller.
func Multi(hs ...Hooks) Hooks {
	nn := make([]Hooks, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			nn = append(nn, h)
		}
	}
	return multiHooks(nn)
}

type multiHooks []Hooks

func (m multiHooks) ReplaceOrphansRemoved(view string, count int) {
	for _, h := range m {
		h.ReplaceOrphansRemoved(view, count)
	}
}
func (m multiHooks) ReplaceStoreError(view string, err error) {
	for _, h := range m {
		h.ReplaceStoreError(view, err)
	}
}
func (m multiHooks) FetchThrottled(canvas string, retryAfter time.Duration) {
	for _, h := range m {
		h.FetchThrottled(canvas, retryAfter)
	}
}
func (m multiHooks) FetchPageError(canvas string, page int, err error) {
	for _, h := range m {
		h.FetchPageError(canvas, page, err)
	}
}
func (m multiHooks) RPCRequestRejected(reason string) {
	for _, h := range m {
		h.RPCRequestRejected(reason)
	}
}
func (m multiHooks) RPCConnectionClosed(err error) {
	for _, h := range m {
		h.RPCConnectionClosed(err)
	}
}
