// Package client implements the remote side of the update RPC: driving
// a connection, reading back its Response stream, and applying it to a
// local store with the same ordered-replace invariant the server uses
// against its own stores (spec §4.7). This is the store-agnostic half
// of "another implementation of the same store contract" the
// specification calls out for a browser cache; the browser bindings
// themselves are out of scope.
package client

import (
	"context"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/canvasmirror/viewcache"
	"github.com/canvasmirror/viewcache/rpc"
	"github.com/canvasmirror/viewcache/store"
)

// ResponseStream yields Response frames in the order the server wrote
// them. Connection-backed implementations simply call rpc.ReadResponse
// until it returns io.EOF (see ReaderResponseStream).
type ResponseStream interface {
	Next(ctx context.Context) (resp rpc.Response, ok bool, err error)
}

// ReaderResponseStream adapts an io.Reader carrying framed Response
// messages (as rpc.WriteResponse writes them) into a ResponseStream,
// terminating cleanly on io.EOF.
type ReaderResponseStream struct {
	R io.Reader
}

// Next reads and decodes the next framed Response from the stream.
func (s *ReaderResponseStream) Next(_ context.Context) (rpc.Response, bool, error) {
	resp, err := rpc.ReadResponse(s.R)
	if err == io.EOF {
		return rpc.Response{}, false, nil
	}
	if err != nil {
		return rpc.Response{}, false, err
	}
	return resp, true, nil
}

// responseResourceStream adapts a ResponseStream into a
// viewcache.ResourceStream[R], decoding Update responses into
// StreamItems (a Stub becomes a nil-Resource item, per spec §4.7) and
// skipping FetchProgress responses, which carry no cache delta.
type responseResourceStream[R viewcache.Resource] struct {
	responses ResponseStream
	decodeKey func([]byte) (viewcache.Key, error)
}

func (s *responseResourceStream[R]) Next(ctx context.Context) (viewcache.StreamItem[R], bool, error) {
	for {
		resp, ok, err := s.responses.Next(ctx)
		if err != nil {
			return viewcache.StreamItem[R]{}, false, err
		}
		if !ok {
			return viewcache.StreamItem[R]{}, false, nil
		}
		if resp.Kind != rpc.ResponseUpdate {
			continue
		}

		if len(resp.Key) < viewcache.ViewSerLen {
			return viewcache.StreamItem[R]{}, false, &viewcache.UnexpectedStreamYieldError{
				Expected: "store key with view prefix",
				Actual:   "truncated key",
			}
		}
		key, err := s.decodeKey(resp.Key[viewcache.ViewSerLen:])
		if err != nil {
			return viewcache.StreamItem[R]{}, false, err
		}

		if len(resp.Resource) == 0 {
			return viewcache.StreamItem[R]{Key: key}, true, nil
		}
		var resource R
		if err := msgpack.Unmarshal(resp.Resource, &resource); err != nil {
			return viewcache.StreamItem[R]{}, false, &viewcache.DeserializationError{Err: err}
		}
		return viewcache.StreamItem[R]{Key: key, Resource: &resource}, true, nil
	}
}

// ApplyUpdate applies every Update response in responses to s, using
// the same ReplaceViewOrdered algorithm the server runs against its own
// stores. The server is required to emit keys in ascending store order
// (it drives them off ScanPrefix), which is what satisfies
// ReplaceViewOrdered's ordering precondition here. hooks may be nil.
func ApplyUpdate[R viewcache.Resource](ctx context.Context, s store.Store, view viewcache.View, responses ResponseStream, decodeKey func([]byte) (viewcache.Key, error), hooks viewcache.Hooks) error {
	return viewcache.ReplaceViewOrdered[R](ctx, s, view, &responseResourceStream[R]{responses: responses, decodeKey: decodeKey}, hooks)
}
