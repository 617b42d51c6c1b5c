package viewcache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/canvasmirror/viewcache/internal/entrycodec"
	"github.com/canvasmirror/viewcache/store"
)

// CacheEntry wraps a resource with the two timestamps callers need to
// reason about staleness:
//
//   - Updated is bumped to "now" on every ReplaceViewOrdered pass that
//     observes the entry's key at all, whether or not its payload
//     changed — it means "last seen", not "last changed".
//   - Written is bumped to "now" only when the observed payload differs
//     (by deep equality) from what was already stored; otherwise it is
//     carried forward unchanged — it means "last content change".
//
// written <= updated always holds. The update RPC (§4.7) decides
// between a stub (carrying only the key) and a full entry using Updated
// alone: an entry whose Updated is after the caller's "since" time is
// sent in full, any other entry as a stub.
type CacheEntry[R any] struct {
	Resource R
	Updated  time.Time
	Written  time.Time
}

// encodeEntry serializes a CacheEntry to the store's on-disk format.
func encodeEntry[R any](entry CacheEntry[R]) ([]byte, error) {
	payload, err := msgpack.Marshal(entry.Resource)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return entrycodec.Encode(entry.Written.UnixNano(), entry.Updated.UnixNano(), payload), nil
}

// decodeEntry deserializes a CacheEntry from the store's on-disk format.
func decodeEntry[R any](b []byte) (CacheEntry[R], error) {
	var zero CacheEntry[R]
	written, updated, payload, err := entrycodec.Decode(b)
	if err != nil {
		return zero, &DeserializationError{Err: err}
	}
	var resource R
	if err := msgpack.Unmarshal(payload, &resource); err != nil {
		return zero, &DeserializationError{Err: err}
	}
	return CacheEntry[R]{
		Resource: resource,
		Written:  time.Unix(0, written).UTC(),
		Updated:  time.Unix(0, updated).UTC(),
	}, nil
}

// getEncoded fetches and decodes the entry currently stored at key, if
// any. It is the "old = store.get(full_key)" step of the replace
// algorithm (spec §4.3.d).
func getEncoded[R any](ctx context.Context, s store.Store, key []byte) (CacheEntry[R], bool, error) {
	var zero CacheEntry[R]
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return zero, false, &StoreError{Op: "get", Err: err}
	}
	if !ok {
		return zero, false, nil
	}
	entry, err := decodeEntry[R](raw)
	if err != nil {
		return zero, false, err
	}
	return entry, true, nil
}
