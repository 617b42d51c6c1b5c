package viewcache

import (
	"testing"
	"time"
)

type fakeResource struct {
	ID   Id
	Name string
}

func (r fakeResource) CacheKey() Key            { return r.ID }
func (r fakeResource) CacheUpdated() time.Time { return time.Time{} }

func TestEntryCodecRoundTrip(t *testing.T) {
	written := time.Unix(1000, 0).UTC()
	updated := time.Unix(2000, 0).UTC()
	entry := CacheEntry[fakeResource]{
		Resource: fakeResource{ID: 7, Name: "algebra"},
		Written:  written,
		Updated:  updated,
	}

	encoded, err := encodeEntry(entry)
	if err != nil {
		t.Fatalf("encodeEntry: %v", err)
	}

	got, err := decodeEntry[fakeResource](encoded)
	if err != nil {
		t.Fatalf("decodeEntry: %v", err)
	}
	if got.Resource != entry.Resource {
		t.Fatalf("resource = %+v, want %+v", got.Resource, entry.Resource)
	}
	if !got.Written.Equal(written) {
		t.Fatalf("written = %v, want %v", got.Written, written)
	}
	if !got.Updated.Equal(updated) {
		t.Fatalf("updated = %v, want %v", got.Updated, updated)
	}
}

func TestDecodeEntryCorrupt(t *testing.T) {
	_, err := decodeEntry[fakeResource]([]byte("not an entry"))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*DeserializationError); !ok {
		t.Fatalf("got %T, want *DeserializationError", err)
	}
}
