package memstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/canvasmirror/viewcache/store"
)

func TestGetInsertRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, []byte("a")); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := s.Insert(ctx, []byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(ctx, []byte("a"))
	if err != nil || !ok || string(v) != "1" {
		t.Fatalf("got v=%q ok=%v err=%v", v, ok, err)
	}

	if err := s.Remove(ctx, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, []byte("a")); ok {
		t.Fatal("expected miss after remove")
	}
}

func TestScanRangeAscendingOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"b", "d", "a", "c"} {
		if err := s.Insert(ctx, []byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	kvs, err := s.ScanRange(ctx, store.Range{Start: []byte("b"), End: []byte("d")})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, kv := range kvs {
		got = append(got, string(kv.Key))
	}
	want := []string{"b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanPrefixAndRemovePrefix(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Insert(ctx, []byte("view1/a"), []byte("1"))
	s.Insert(ctx, []byte("view1/b"), []byte("2"))
	s.Insert(ctx, []byte("view2/a"), []byte("3"))

	kvs, err := s.ScanPrefix(ctx, []byte("view1/"))
	if err != nil {
		t.Fatal(err)
	}
	if len(kvs) != 2 {
		t.Fatalf("len(kvs) = %d, want 2", len(kvs))
	}

	if err := s.RemovePrefix(ctx, []byte("view1/")); err != nil {
		t.Fatal(err)
	}
	remaining, err := s.ScanRange(ctx, store.Range{})
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || !bytes.Equal(remaining[0].Key, []byte("view2/a")) {
		t.Fatalf("remaining = %+v, want only view2/a", remaining)
	}
}

func TestRemoveRangeHalfOpen(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"a", "b", "c", "d"} {
		s.Insert(ctx, []byte(k), []byte(k))
	}

	if err := s.RemoveRange(ctx, store.Range{Start: []byte("b"), End: []byte("d")}); err != nil {
		t.Fatal(err)
	}
	kvs, err := s.ScanRange(ctx, store.Range{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, kv := range kvs {
		got = append(got, string(kv.Key))
	}
	want := []string{"a", "d"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestOpenerReturnsSameStorePerFamily(t *testing.T) {
	o := NewOpener()
	s1, err := o.Open("course")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := o.Open("course")
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatal("expected the same *Store instance for repeated Open of the same family")
	}

	s3, err := o.Open("assignment")
	if err != nil {
		t.Fatal(err)
	}
	if s3 == s1 {
		t.Fatal("expected a distinct Store for a different family")
	}
}
