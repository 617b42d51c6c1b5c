// Package badger adapts a github.com/dgraph-io/badger/v4 database to the
// store.Store contract. Badger's LSM-tree layout and native ordered
// iteration make range and prefix scans efficient, which is the
// property ReplaceViewOrdered depends on for its sequence of small,
// increasing range deletes.
package badger

import (
	"bytes"
	"context"
	"sync"

	bg "github.com/dgraph-io/badger/v4"

	"github.com/canvasmirror/viewcache/store"
)

// Store wraps an open badger.DB.
type Store struct {
	db *bg.DB
}

var _ store.Store = (*Store)(nil)

// Config configures Open.
type Config struct {
	// Dir is the path badger stores its LSM-tree and value log under.
	Dir string
	// InMemory runs badger with no on-disk footprint, for tests.
	InMemory bool
}

// Open opens (creating if absent) a badger database at cfg.Dir.
func Open(cfg Config) (*Store, error) {
	opts := bg.DefaultOptions(cfg.Dir)
	opts = opts.WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}
	db, err := bg.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := s.db.View(func(txn *bg.Txn) error {
		item, err := txn.Get(key)
		if err == bg.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(v []byte) error {
			value = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (s *Store) Insert(_ context.Context, key, value []byte) error {
	return s.db.Update(func(txn *bg.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *Store) Remove(_ context.Context, key []byte) error {
	return s.db.Update(func(txn *bg.Txn) error {
		err := txn.Delete(key)
		if err == bg.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *Store) ScanRange(_ context.Context, r store.Range) ([]store.KV, error) {
	var out []store.KV
	err := s.db.View(func(txn *bg.Txn) error {
		it := txn.NewIterator(bg.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(r.Start); it.Valid(); it.Next() {
			k := it.Item().KeyCopy(nil)
			if r.End != nil && bytes.Compare(k, r.End) >= 0 {
				break
			}
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, store.KV{Key: k, Value: v})
		}
		return nil
	})
	return out, err
}

func (s *Store) ScanPrefix(ctx context.Context, prefix []byte) ([]store.KV, error) {
	var out []store.KV
	err := s.db.View(func(txn *bg.Txn) error {
		opts := bg.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, store.KV{Key: k, Value: v})
		}
		return nil
	})
	return out, err
}

func (s *Store) RemoveRange(ctx context.Context, r store.Range) error {
	kvs, err := s.ScanRange(ctx, r)
	if err != nil {
		return err
	}
	if len(kvs) == 0 {
		return nil
	}
	return s.db.Update(func(txn *bg.Txn) error {
		for _, kv := range kvs {
			if err := txn.Delete(kv.Key); err != nil && err != bg.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RemovePrefix(ctx context.Context, prefix []byte) error {
	return s.db.DropPrefix(prefix)
}

func (s *Store) Close() error { return s.db.Close() }

// Opener opens one badger.DB per resource family, each rooted at a
// distinct subdirectory, satisfying store.Opener.
type Opener struct {
	BaseDir  string
	InMemory bool
	mu       sync.Mutex
	stores   map[string]*Store
}

var _ store.Opener = (*Opener)(nil)

func (o *Opener) Open(family string) (store.Store, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stores == nil {
		o.stores = make(map[string]*Store)
	} else if s, ok := o.stores[family]; ok {
		return s, nil
	}
	dir := family
	if o.BaseDir != "" {
		dir = o.BaseDir + "/" + family
	}
	s, err := Open(Config{Dir: dir, InMemory: o.InMemory})
	if err != nil {
		return nil, err
	}
	o.stores[family] = s
	return s, nil
}
