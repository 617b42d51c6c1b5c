// Package server implements the connection-handling glue for the
// update RPC: accepting one connection, decoding its Request frame,
// dispatching to a Fetch or Update, and streaming back Response
// frames.
package server

import (
	"context"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/canvasmirror/viewcache"
	"github.com/canvasmirror/viewcache/fetch"
	"github.com/canvasmirror/viewcache/resource"
	"github.com/canvasmirror/viewcache/rpc"
	"github.com/canvasmirror/viewcache/rpc/throttle"
	"github.com/canvasmirror/viewcache/store"
)

// admissionCost is what a Fetch request's initial budget check charges
// before any page has actually been fetched, since the real per-page
// cost (Canvas's X-Request-Cost) is only known once a page comes back.
const admissionCost = 1.0

// Handler dispatches Request frames read off a connection against a
// family-scoped store and an upstream Fetcher.
type Handler struct {
	Opener  store.Opener
	Fetcher *fetch.Fetcher
	Locker  *viewcache.ViewLocker
	Budget  throttle.Budget
	Hooks   viewcache.Hooks
	Logger  viewcache.Logger
}

func (h *Handler) hooks() viewcache.Hooks {
	if h.Hooks != nil {
		return h.Hooks
	}
	return viewcache.NopHooks{}
}

func (h *Handler) logger() viewcache.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return viewcache.NopLogger{}
}

func (h *Handler) budget() throttle.Budget {
	if h.Budget != nil {
		return h.Budget
	}
	return throttle.NopBudget{}
}

// HandleConn reads exactly one Request frame from rw, dispatches it,
// streams back every Response frame it produces, and returns. The
// caller is responsible for closing rw; HandleConn never closes it
// itself so a long-lived connection can be reused for another request.
func (h *Handler) HandleConn(ctx context.Context, rw io.ReadWriter) error {
	req, err := rpc.ReadRequest(rw)
	if err != nil {
		h.hooks().RPCConnectionClosed(err)
		return err
	}

	var dispatchErr error
	switch req.Kind {
	case rpc.RequestFetch:
		dispatchErr = h.handleFetch(ctx, rw, req)
	case rpc.RequestUpdate:
		dispatchErr = h.handleUpdate(ctx, rw, req)
	default:
		h.hooks().RPCRequestRejected("unknown request kind")
		dispatchErr = &viewcache.UnexpectedStreamYieldError{Expected: "fetch or update request", Actual: "unknown request kind"}
	}

	h.hooks().RPCConnectionClosed(dispatchErr)
	return dispatchErr
}

var fetchKinds = []rpc.ResourceKind{rpc.ResourceCourse, rpc.ResourceAssignment, rpc.ResourceSubmission}

func (h *Handler) handleFetch(ctx context.Context, w io.Writer, req Request) error {
	release, err := h.Locker.Lock(req.View)
	if err != nil {
		return err
	}
	defer release()

	canvas := req.View.Canvas.BaseURL
	ok, err := h.budget().Reserve(ctx, canvas, admissionCost)
	if err != nil {
		return err
	}
	if !ok {
		h.hooks().FetchThrottled(canvas, 0)
		return &fetch.ThrottledError{}
	}

	fetcher := h.Fetcher.WithToken(req.CanvasToken)
	for _, kind := range fetchKinds {
		if err := h.fetchOne(ctx, fetcher, req, kind); err != nil {
			return err
		}
		if err := rpc.WriteResponse(w, rpc.NewFetchProgressResponse(kind)); err != nil {
			return err
		}
	}
	return nil
}

// Request is an alias so this package doesn't need to import rpc at
// every call site; it is the same type rpc.Request names.
type Request = rpc.Request

func (h *Handler) fetchOne(ctx context.Context, fetcher *fetch.Fetcher, req Request, kind rpc.ResourceKind) error {
	family := kind.String()
	s, err := h.Opener.Open(family)
	if err != nil {
		return err
	}

	path := "/api/v1/" + family + "s"
	pages := fetcher.Paginate(req.View.Canvas.BaseURL, fetch.Request{Path: path, PerPage: 100})
	canvas := req.View.Canvas.BaseURL

	switch kind {
	case rpc.ResourceCourse:
		return viewcache.ReplaceViewOrdered[resource.Course](ctx, s, req.View, &pageResourceStream[resource.Course]{pages: pages, budget: h.budget(), canvas: canvas, hooks: h.hooks()}, h.hooks())
	case rpc.ResourceAssignment:
		return viewcache.ReplaceViewOrdered[resource.Assignment](ctx, s, req.View, &pageResourceStream[resource.Assignment]{pages: pages, budget: h.budget(), canvas: canvas, hooks: h.hooks()}, h.hooks())
	case rpc.ResourceSubmission:
		return viewcache.ReplaceViewOrdered[resource.Submission](ctx, s, req.View, &pageResourceStream[resource.Submission]{pages: pages, budget: h.budget(), canvas: canvas, hooks: h.hooks()}, h.hooks())
	default:
		return nil
	}
}

// pageResourceStream adapts a *fetch.PageStream of JSON array pages
// into a viewcache.ResourceStream of individual resources. Each page's
// observed X-Request-Cost is reserved against budget as it arrives,
// since that is the first point the real (rather than estimated) cost
// of talking to canvas is known; a page that can't be paid for aborts
// the stream as a throttle rather than silently continuing to spend
// past what budget already knows is exhausted.
type pageResourceStream[R viewcache.Resource] struct {
	pages   *fetch.PageStream
	budget  throttle.Budget
	canvas  string
	hooks   viewcache.Hooks
	pending []R
}

func (s *pageResourceStream[R]) Next(ctx context.Context) (viewcache.StreamItem[R], bool, error) {
	for len(s.pending) == 0 {
		page, ok, err := s.pages.Next(ctx)
		if err != nil {
			return viewcache.StreamItem[R]{}, false, err
		}
		if !ok {
			return viewcache.StreamItem[R]{}, false, nil
		}

		if page.RequestCost > 0 {
			allowed, err := s.budget.Reserve(ctx, s.canvas, page.RequestCost)
			if err != nil {
				return viewcache.StreamItem[R]{}, false, err
			}
			if !allowed {
				s.hooks.FetchThrottled(s.canvas, 0)
				return viewcache.StreamItem[R]{}, false, &fetch.ThrottledError{}
			}
		}

		items, err := fetch.DecodeItems[R](page.Body)
		if err != nil {
			return viewcache.StreamItem[R]{}, false, err
		}
		s.pending = items
	}
	resource := s.pending[0]
	s.pending = s.pending[1:]
	return viewcache.StreamItem[R]{Key: resource.CacheKey(), Resource: &resource}, true, nil
}

func (h *Handler) handleUpdate(ctx context.Context, w io.Writer, req Request) error {
	family := req.ResourceKind.String()
	s, err := h.Opener.Open(family)
	if err != nil {
		return err
	}

	switch req.ResourceKind {
	case rpc.ResourceCourse:
		return streamUpdates[resource.Course](ctx, w, s, req, decodeIdKey)
	case rpc.ResourceAssignment:
		return streamUpdates[resource.Assignment](ctx, w, s, req, decodeIdKey)
	case rpc.ResourceSubmission:
		return streamUpdates[resource.Submission](ctx, w, s, req, resource.DecodeSubmissionKey)
	default:
		return nil
	}
}

// decodeIdKey adapts viewcache.DecodeId to the decodeKey shape GetAll
// expects, discarding the leftover bytes every fixed-width Id decode
// leaves empty anyway.
func decodeIdKey(b []byte) (viewcache.Key, error) {
	id, _, err := viewcache.DecodeId(b)
	return id, err
}

func streamUpdates[R viewcache.Resource](ctx context.Context, w io.Writer, s store.Store, req Request, decodeKey func([]byte) (viewcache.Key, error)) error {
	results, err := viewcache.GetAll[R](ctx, s, req.View, decodeKey)
	if err != nil {
		return err
	}

	for _, result := range results {
		fullKey, err := viewcache.BuildKey(req.View, result.Key)
		if err != nil {
			return err
		}

		var payload []byte
		if result.Entry.Updated.After(req.Since) {
			payload, err = msgpack.Marshal(result.Entry.Resource)
			if err != nil {
				return &viewcache.SerializationError{Err: err}
			}
		}
		if err := rpc.WriteResponse(w, rpc.NewUpdateResponse(fullKey, payload)); err != nil {
			return err
		}
	}
	return nil
}
