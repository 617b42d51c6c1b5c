package resource

import (
	"testing"
	"time"

	"github.com/canvasmirror/viewcache"
)

func TestSubmissionKeyRoundTrip(t *testing.T) {
	key := SubmissionKey{AssignmentID: 11, UserID: 22, Attempt: 3}
	b, err := key.AppendTo(nil)
	if err != nil {
		t.Fatalf("AppendTo: %v", err)
	}
	if len(b) != submissionKeySerLen {
		t.Fatalf("len = %d, want %d", len(b), submissionKeySerLen)
	}

	got, err := DecodeSubmissionKey(b)
	if err != nil {
		t.Fatalf("DecodeSubmissionKey: %v", err)
	}
	if got != key {
		t.Fatalf("got %+v, want %+v", got, key)
	}
}

func TestSubmissionKeyDistinguishesAttempt(t *testing.T) {
	first := SubmissionKey{AssignmentID: 5, UserID: 6, Attempt: 1}
	second := SubmissionKey{AssignmentID: 5, UserID: 6, Attempt: 2}

	a, err := first.AppendTo(nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.AppendTo(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) == string(b) {
		t.Fatal("submissions differing only in attempt must not collide on one key")
	}
}

func TestSubmissionKeyOrdersByAssignmentThenUser(t *testing.T) {
	a, err := (SubmissionKey{AssignmentID: 1, UserID: 99}).AppendTo(nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := (SubmissionKey{AssignmentID: 2, UserID: 1}).AppendTo(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !(string(a) < string(b)) {
		t.Fatal("a lower assignment id should sort first regardless of user id")
	}
}

func TestSubmissionCacheKey(t *testing.T) {
	s := Submission{AssignmentID: 5, UserID: 6, Attempt: 4, UpdatedAt: time.Unix(1, 0).UTC()}
	want := SubmissionKey{AssignmentID: 5, UserID: 6, Attempt: 4}
	got := s.CacheKey()
	if got != viewcache.Key(want) {
		t.Fatalf("CacheKey() = %+v, want %+v", got, want)
	}
}
