package resource

import (
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/canvasmirror/viewcache"
)

func TestCourseCacheKeyAndMsgpackRoundTrip(t *testing.T) {
	c := Course{
		ID:            42,
		Name:          "Intro to Testing",
		WorkflowState: CourseAvailable,
		CreatedAt:     time.Unix(1000, 0).UTC(),
		StartAt:       time.Unix(2000, 0).UTC(),
		UpdatedAt:     time.Unix(3000, 0).UTC(),
	}

	if c.CacheKey() != viewcache.Id(42) {
		t.Fatalf("CacheKey() = %v, want 42", c.CacheKey())
	}
	if !c.CacheUpdated().Equal(c.UpdatedAt) {
		t.Fatalf("CacheUpdated() = %v, want %v", c.CacheUpdated(), c.UpdatedAt)
	}

	encoded, err := msgpack.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Course
	if err := msgpack.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != c.ID || got.Name != c.Name || got.WorkflowState != c.WorkflowState {
		t.Fatalf("got %+v, want %+v", got, c)
	}
}

func TestAssignmentCacheKey(t *testing.T) {
	a := Assignment{ID: 7, CourseID: 1, UpdatedAt: time.Unix(500, 0).UTC()}
	if a.CacheKey() != viewcache.Id(7) {
		t.Fatalf("CacheKey() = %v, want 7", a.CacheKey())
	}
	if !a.CacheUpdated().Equal(a.UpdatedAt) {
		t.Fatal("CacheUpdated should return UpdatedAt")
	}
}

func TestUserCacheKey(t *testing.T) {
	u := User{ID: 3, Name: "Ada Lovelace"}
	if u.CacheKey() != viewcache.Id(3) {
		t.Fatalf("CacheKey() = %v, want 3", u.CacheKey())
	}
}
