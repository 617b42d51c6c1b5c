package client

import (
	"context"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/canvasmirror/viewcache"
	"github.com/canvasmirror/viewcache/rpc"
	"github.com/canvasmirror/viewcache/store/memstore"
)

type widget struct {
	ID   viewcache.Id `msgpack:"id"`
	Name string       `msgpack:"name"`
}

func (w widget) CacheKey() viewcache.Key { return w.ID }
func (w widget) CacheUpdated() time.Time { return time.Time{} }

func decodeWidgetKey(b []byte) (viewcache.Key, error) {
	id, _, err := viewcache.DecodeId(b)
	return id, err
}

type fakeResponseStream struct {
	items []rpc.Response
	pos   int
}

func (f *fakeResponseStream) Next(context.Context) (rpc.Response, bool, error) {
	if f.pos >= len(f.items) {
		return rpc.Response{}, false, nil
	}
	r := f.items[f.pos]
	f.pos++
	return r, true, nil
}

// Scenario C: a stub for a key the local store never held is a no-op;
// an Update response carrying a payload creates the entry.
func TestApplyUpdateStubAndResource(t *testing.T) {
	view := viewcache.View{
		Canvas: viewcache.Canvas{BaseURL: "https://x.test"},
		Viewer: viewcache.NewUserViewer(1),
	}

	stubKey, err := viewcache.BuildKey(view, viewcache.Id(7))
	if err != nil {
		t.Fatal(err)
	}
	resourceKey, err := viewcache.BuildKey(view, viewcache.Id(9))
	if err != nil {
		t.Fatal(err)
	}
	payload, err := msgpack.Marshal(widget{ID: 9, Name: "B"})
	if err != nil {
		t.Fatal(err)
	}

	stream := &fakeResponseStream{items: []rpc.Response{
		rpc.NewFetchProgressResponse(rpc.ResourceAssignment), // skipped: no delta
		rpc.NewUpdateResponse(stubKey, nil),
		rpc.NewUpdateResponse(resourceKey, payload),
	}}

	s := memstore.New()
	if err := ApplyUpdate[widget](context.Background(), s, view, stream, decodeWidgetKey, nil); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	results, err := viewcache.GetAll[widget](context.Background(), s, view, decodeWidgetKey)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1 (stub for key 7 should be a no-op)", len(results))
	}
	if results[0].Key.(viewcache.Id) != 9 {
		t.Fatalf("unexpected key: %+v", results[0])
	}
	if results[0].Entry.Resource.Name != "B" {
		t.Fatalf("unexpected resource: %+v", results[0].Entry.Resource)
	}
}

func TestApplyUpdateTruncatedKeyError(t *testing.T) {
	view := viewcache.View{
		Canvas: viewcache.Canvas{BaseURL: "https://x.test"},
		Viewer: viewcache.NewUserViewer(1),
	}
	stream := &fakeResponseStream{items: []rpc.Response{
		rpc.NewUpdateResponse([]byte{1, 2, 3}, nil),
	}}

	s := memstore.New()
	err := ApplyUpdate[widget](context.Background(), s, view, stream, decodeWidgetKey, nil)
	if _, ok := err.(*viewcache.UnexpectedStreamYieldError); !ok {
		t.Fatalf("got %T (%v), want *UnexpectedStreamYieldError", err, err)
	}
}
