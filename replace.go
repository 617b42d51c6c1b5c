package viewcache

import (
	"bytes"
	"context"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/canvasmirror/viewcache/store"
)

// Resource is the constraint a cached resource type must satisfy: it
// must know its own key within a view. CacheUpdated reports the
// resource's own upstream "last changed" timestamp, which is metadata
// about the resource rather than an input to ReplaceViewOrdered's
// Updated/Written bookkeeping (see CacheEntry).
type Resource interface {
	CacheKey() Key
	CacheUpdated() time.Time
}

// StreamItem is one item a ResourceStream yields: a resource's key,
// plus either its freshly observed payload or nil to mean "this key was
// observed upstream but its payload is a stub — unchanged or pruned"
// (spec §4.7). A nil Resource for a key the store has never seen is a
// no-op; a nil Resource for a key the store already holds rewrites that
// entry with only its Updated timestamp bumped.
type StreamItem[R Resource] struct {
	Key      Key
	Resource *R
}

// ResourceStream yields items in strictly ascending key order. A
// stream that violates this ordering causes ReplaceViewOrdered to
// return an *UnexpectedStreamYieldError rather than silently corrupt
// the store.
type ResourceStream[R Resource] interface {
	// Next returns the next item. ok is false once the stream is
	// exhausted; a non-nil err aborts the replace immediately, leaving
	// the store in whatever partial state it reached.
	Next(ctx context.Context) (item StreamItem[R], ok bool, err error)
}

// ReplaceViewOrdered reconciles the store's region for view against an
// ascending stream of observed resources: every key the stream yields
// with a payload is written (or overwritten), every stub (nil payload)
// for a key the store already holds has only its Updated timestamp
// rewritten, a stub for a key the store does not hold writes nothing,
// every key strictly between two consecutive observed keys is removed,
// and any trailing keys after the last observed one are removed too.
// The net effect is that after this call returns successfully, the
// view's region of the store holds exactly the keys the stream yielded
// with a payload plus the stubbed keys it already held.
//
// The store is touched with a sequence of small, increasing-key range
// deletes and inserts rather than one bulk diff, which keeps writes
// roughly in key order and favors LSM-tree-backed stores.
//
// hooks is notified of every orphan-pruning range delete and any store
// error; pass NopHooks{} if the caller doesn't care.
func ReplaceViewOrdered[R Resource](ctx context.Context, s store.Store, view View, resources ResourceStream[R], hooks Hooks) error {
	if hooks == nil {
		hooks = NopHooks{}
	}
	label := viewLabel(view)

	prefix, err := view.Serialize()
	if err != nil {
		return err
	}

	// gapStart is the start of the gap between the previously written
	// key and the one about to be written. It begins at the view's
	// prefix itself, so the first range delete only ever touches this
	// view's region of the store.
	gapStart := append([]byte(nil), prefix...)

	for {
		item, ok, err := resources.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		key, err := BuildKey(view, item.Key)
		if err != nil {
			return err
		}
		if !bytes.HasPrefix(key, prefix) {
			return &UnexpectedStreamYieldError{Expected: "key under view prefix", Actual: "key outside view"}
		}
		if bytes.Compare(key, gapStart) < 0 {
			return &UnexpectedStreamYieldError{Expected: "key lexicographically greater than the last", Actual: "key lexicographically less than the last"}
		}

		if bytes.Compare(key, gapStart) > 0 {
			removed, err := removeRangeCounted(ctx, s, store.Range{Start: gapStart, End: key})
			if err != nil {
				storeErr := &StoreError{Op: "remove_range", Err: err}
				hooks.ReplaceStoreError(label, storeErr)
				return storeErr
			}
			if removed > 0 {
				hooks.ReplaceOrphansRemoved(label, removed)
			}
		}

		old, hadOld, err := getEncoded[R](ctx, s, key)
		if err != nil {
			hooks.ReplaceStoreError(label, err)
			return err
		}

		now := timeNow()
		switch {
		case item.Resource != nil:
			written := now
			if hadOld && reflect.DeepEqual(old.Resource, *item.Resource) {
				written = old.Written
			}
			entry := CacheEntry[R]{Resource: *item.Resource, Updated: now, Written: written}
			encoded, err := encodeEntry(entry)
			if err != nil {
				return err
			}
			if err := s.Insert(ctx, key, encoded); err != nil {
				storeErr := &StoreError{Op: "insert", Err: err}
				hooks.ReplaceStoreError(label, storeErr)
				return storeErr
			}

		case hadOld:
			// A stub: the key still exists upstream but its payload is
			// unchanged, so only the "last seen" timestamp advances.
			old.Updated = now
			encoded, err := encodeEntry(old)
			if err != nil {
				return err
			}
			if err := s.Insert(ctx, key, encoded); err != nil {
				storeErr := &StoreError{Op: "insert", Err: err}
				hooks.ReplaceStoreError(label, storeErr)
				return storeErr
			}

		default:
			// A stub for a key this view has never held: nothing to
			// write back.
		}

		// Move the cursor past the key just written. This assumes keys
		// do not grow in length across the carry, which holds here
		// because every Key type in this package has a fixed SerLen.
		gapStart = IncrementKey(key)
	}

	// Remove any keys left over from a previous, larger population of
	// this view that the stream never revisited.
	viewEnd := store.PrefixRange(prefix).End
	if viewEnd == nil || bytes.Compare(gapStart, viewEnd) < 0 {
		removed, err := removeRangeCounted(ctx, s, store.Range{Start: gapStart, End: viewEnd})
		if err != nil {
			storeErr := &StoreError{Op: "remove_range", Err: err}
			hooks.ReplaceStoreError(label, storeErr)
			return storeErr
		}
		if removed > 0 {
			hooks.ReplaceOrphansRemoved(label, removed)
		}
	}

	return nil
}

// removeRangeCounted deletes r from s and reports how many keys it
// removed, so ReplaceViewOrdered can tell Hooks.ReplaceOrphansRemoved a
// real count without every Store implementation needing to return one.
func removeRangeCounted(ctx context.Context, s store.Store, r store.Range) (int, error) {
	kvs, err := s.ScanRange(ctx, r)
	if err != nil {
		return 0, err
	}
	if len(kvs) == 0 {
		return 0, nil
	}
	if err := s.RemoveRange(ctx, r); err != nil {
		return 0, err
	}
	return len(kvs), nil
}

// viewLabel renders a View as a short, human-readable string for Hooks
// callbacks, without exposing the raw serialized key bytes.
func viewLabel(view View) string {
	return view.Canvas.BaseURL + "#" + strconv.FormatUint(uint64(view.Viewer.UserID), 10)
}

// timeNow is a var so tests can stub wall-clock time deterministically.
var timeNow = func() time.Time { return time.Now().UTC() }

// Get fetches a single resource from the cache.
func Get[R Resource](ctx context.Context, s store.Store, view View, key Key) (CacheEntry[R], bool, error) {
	var zero CacheEntry[R]
	full, err := BuildKey(view, key)
	if err != nil {
		return zero, false, err
	}
	raw, ok, err := s.Get(ctx, full)
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

// GetAllResult is one (key, entry) pair returned by GetAll.
type GetAllResult[R Resource] struct {
	Key   Key
	Entry CacheEntry[R]
}

// GetAll fetches every resource cached under view, in ascending key
// order. decodeKey reconstructs a resource's logical key from its
// serialized form.
func GetAll[R Resource](ctx context.Context, s store.Store, view View, decodeKey func([]byte) (Key, error)) ([]GetAllResult[R], error) {
	prefix, err := view.Serialize()
	if err != nil {
		return nil, err
	}
	kvs, err := s.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, &StoreError{Op: "scan_prefix", Err: err}
	}

	out := make([]GetAllResult[R], 0, len(kvs))
	for _, kv := range kvs {
		if len(kv.Key) < len(prefix) {
			return nil, &UnexpectedStreamYieldError{Expected: "key with view prefix", Actual: "truncated key"}
		}
		key, err := decodeKey(kv.Key[len(prefix):])
		if err != nil {
			return nil, err
		}
		entry, err := decodeEntry[R](kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, GetAllResult[R]{Key: key, Entry: entry})
	}
	return out, nil
}

// ViewLocker serializes concurrent ReplaceViewOrdered calls against the
// same view, so a slow fetch for one view can never interleave its
// writes with a concurrent replace of that same view. Distinct views
// never contend with each other.
type ViewLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewViewLocker returns a ready-to-use ViewLocker.
func NewViewLocker() *ViewLocker {
	return &ViewLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the per-view lock for view, serialized against any
// other goroutine locking the same view. The returned func releases it.
func (l *ViewLocker) Lock(view View) (func(), error) {
	key, err := view.Serialize()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	m, ok := l.locks[string(key)]
	if !ok {
		m = &sync.Mutex{}
		l.locks[string(key)] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
