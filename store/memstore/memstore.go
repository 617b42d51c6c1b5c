// Package memstore adapts an in-memory github.com/google/btree ordered
// map to the store.Store contract, for tests and for callers that don't
// need durability.
package memstore

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/canvasmirror/viewcache/store"
)

type item struct {
	key, value []byte
}

func (a item) Less(b btree.Item) bool {
	return bytes.Compare(a.key, b.(item).key) < 0
}

// Store is a mutex-guarded ordered in-memory store, matching the
// mutex-guarded map idiom used elsewhere in this codebase for
// in-process state: reads take a shared lock, writes take an exclusive
// one, and there is no background goroutine since there is nothing to
// periodically reconcile.
type Store struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{tree: btree.New(32)}
}

func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := s.tree.Get(item{key: key})
	if found == nil {
		return nil, false, nil
	}
	v := found.(item).value
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Insert(_ context.Context, key, value []byte) error {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	s.mu.Lock()
	s.tree.ReplaceOrInsert(item{key: k, value: v})
	s.mu.Unlock()
	return nil
}

func (s *Store) Remove(_ context.Context, key []byte) error {
	s.mu.Lock()
	s.tree.Delete(item{key: key})
	s.mu.Unlock()
	return nil
}

func (s *Store) ScanRange(_ context.Context, r store.Range) ([]store.KV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.KV
	collect := func(i btree.Item) bool {
		it := i.(item)
		if r.End != nil && bytes.Compare(it.key, r.End) >= 0 {
			return false
		}
		out = append(out, store.KV{Key: append([]byte(nil), it.key...), Value: append([]byte(nil), it.value...)})
		return true
	}

	if r.Start == nil {
		s.tree.Ascend(collect)
	} else {
		s.tree.AscendGreaterOrEqual(item{key: r.Start}, collect)
	}
	return out, nil
}

func (s *Store) ScanPrefix(ctx context.Context, prefix []byte) ([]store.KV, error) {
	return store.ScanPrefixViaRange(ctx, s, prefix)
}

func (s *Store) RemoveRange(ctx context.Context, r store.Range) error {
	return store.RemoveRangeViaScan(ctx, s, r)
}

func (s *Store) RemovePrefix(ctx context.Context, prefix []byte) error {
	return store.RemovePrefixViaScan(ctx, s, prefix)
}

func (s *Store) Close() error { return nil }

// Opener opens one independent in-memory Store per resource family.
type Opener struct {
	mu     sync.Mutex
	stores map[string]*Store
}

var _ store.Opener = (*Opener)(nil)

// NewOpener returns a ready-to-use Opener.
func NewOpener() *Opener { return &Opener{stores: make(map[string]*Store)} }

func (o *Opener) Open(family string) (store.Store, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.stores[family]
	if !ok {
		s = New()
		o.stores[family] = s
	}
	return s, nil
}
