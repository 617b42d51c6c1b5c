package fetch

import "testing"

func TestParseLinksHeader(t *testing.T) {
	header := `<https://x.test/api/v1/courses?page=1>; rel="current",` +
		` <https://x.test/api/v1/courses?page=2>; rel="next",` +
		` <https://x.test/api/v1/courses?page=5>; rel="last"`

	links, err := ParseLinksHeader(header)
	if err != nil {
		t.Fatalf("ParseLinksHeader: %v", err)
	}
	if links.Current != "https://x.test/api/v1/courses?page=1" {
		t.Fatalf("current = %q", links.Current)
	}
	if links.Next != "https://x.test/api/v1/courses?page=2" {
		t.Fatalf("next = %q", links.Next)
	}
	if links.Last != "https://x.test/api/v1/courses?page=5" {
		t.Fatalf("last = %q", links.Last)
	}
	if links.Prev != "" {
		t.Fatalf("prev should be empty, got %q", links.Prev)
	}
}

func TestParseLinksHeaderMissing(t *testing.T) {
	_, err := ParseLinksHeader("   ")
	if _, ok := err.(*MissingLinksHeaderError); !ok {
		t.Fatalf("got %T, want *MissingLinksHeaderError", err)
	}
}

func TestParseLinksHeaderMalformedSegments(t *testing.T) {
	cases := []string{
		`https://x.test/a; rel="next"`,     // no angle brackets
		`<https://x.test/a> rel="next"`,    // no semicolon
		`<https://x.test/a>; next`,         // no '='
	}
	for _, h := range cases {
		_, err := ParseLinksHeader(h)
		if _, ok := err.(*MalformedLinkHeaderError); !ok {
			t.Fatalf("header %q: got %T, want *MalformedLinkHeaderError", h, err)
		}
	}
}

func TestLinksRelAccessors(t *testing.T) {
	links := Links{Next: "https://x.test/next"}

	got, err := links.NextRel()
	if err != nil || got != links.Next {
		t.Fatalf("NextRel() = %q, %v", got, err)
	}

	if _, err := links.PrevRel(); err == nil {
		t.Fatal("expected MissingPaginationLinkError for absent prev")
	} else if mpe, ok := err.(*MissingPaginationLinkError); !ok || mpe.Rel != "prev" {
		t.Fatalf("got %T (%v)", err, err)
	}

	if _, err := links.FirstRel(); err == nil {
		t.Fatal("expected error for absent first")
	}
	if _, err := links.LastRel(); err == nil {
		t.Fatal("expected error for absent last")
	}
	if _, err := links.CurrentRel(); err == nil {
		t.Fatal("expected error for absent current")
	}
}
