package fetch

import "testing"

func TestRequestURLBasic(t *testing.T) {
	req := Request{Path: "/api/v1/courses", PerPage: 50}
	got := req.URL("https://x.test")
	want := "https://x.test/api/v1/courses?per_page=50"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRequestURLIncludeAndQuery(t *testing.T) {
	req := Request{
		Path:    "/api/v1/courses",
		Include: []string{"term", "total_students"},
		Query:   map[string]string{"enrollment_state": "active"},
	}
	got := req.URL("https://x.test")
	want := "https://x.test/api/v1/courses?enrollment_state=active&include%5B%5D=term&include%5B%5D=total_students"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRequestURLAppendsToExistingQuery(t *testing.T) {
	req := Request{Path: "/api/v1/courses?page=2", PerPage: 10}
	got := req.URL("https://x.test")
	want := "https://x.test/api/v1/courses?page=2&per_page=10"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRequestURLNoParams(t *testing.T) {
	req := Request{Path: "/api/v1/courses/5"}
	got := req.URL("https://x.test")
	want := "https://x.test/api/v1/courses/5"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
