package viewcache

import (
	"strings"
	"testing"
)

func TestIdRoundTrip(t *testing.T) {
	for _, id := range []Id{0, 1, 255, 256, 1<<63 - 1, 1 << 63} {
		b, err := id.AppendTo(nil)
		if err != nil {
			t.Fatalf("AppendTo(%d): %v", id, err)
		}
		if len(b) != idSerLen {
			t.Fatalf("len = %d, want %d", len(b), idSerLen)
		}
		got, rest, err := DecodeId(b)
		if err != nil {
			t.Fatalf("DecodeId: %v", err)
		}
		if got != id {
			t.Fatalf("got %d, want %d", got, id)
		}
		if len(rest) != 0 {
			t.Fatalf("leftover bytes: %d", len(rest))
		}
	}
}

func TestIdLexicographicMonotonicity(t *testing.T) {
	a, b := Id(7), Id(9)
	ab, _ := a.AppendTo(nil)
	bb, _ := b.AppendTo(nil)
	if !(string(ab) < string(bb)) {
		t.Fatalf("serialize(7) should sort before serialize(9)")
	}
}

func TestCanvasRoundTrip(t *testing.T) {
	c := Canvas{BaseURL: "https://x.test"}
	b, err := c.AppendTo(nil)
	if err != nil {
		t.Fatalf("AppendTo: %v", err)
	}
	if len(b) != MaxCanvasLength {
		t.Fatalf("len = %d, want %d", len(b), MaxCanvasLength)
	}
	got, rest, err := DecodeCanvas(b)
	if err != nil {
		t.Fatalf("DecodeCanvas: %v", err)
	}
	if got != c {
		t.Fatalf("got %+v, want %+v", got, c)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %d", len(rest))
	}
}

func TestCanvasTooLong(t *testing.T) {
	c := Canvas{BaseURL: strings.Repeat("a", MaxCanvasLength+1)}
	_, err := c.AppendTo(nil)
	e, ok := err.(*IllegalCanvasBaseURLError)
	if !ok {
		t.Fatalf("got %T, want *IllegalCanvasBaseURLError", err)
	}
	if e.Problem != "exceeds maximum length" {
		t.Fatalf("problem = %q", e.Problem)
	}
}

func TestCanvasContainsNUL(t *testing.T) {
	c := Canvas{BaseURL: "https://x\x00.test"}
	_, err := c.AppendTo(nil)
	e, ok := err.(*IllegalCanvasBaseURLError)
	if !ok || e.Problem != "contains NUL byte" {
		t.Fatalf("got %v", err)
	}
}

func TestViewerRoundTrip(t *testing.T) {
	v := NewUserViewer(42)
	b, err := v.AppendTo(nil)
	if err != nil {
		t.Fatalf("AppendTo: %v", err)
	}
	if len(b) != viewerSerLen {
		t.Fatalf("len = %d, want %d", len(b), viewerSerLen)
	}
	got, rest, err := DecodeViewer(b)
	if err != nil {
		t.Fatalf("DecodeViewer: %v", err)
	}
	if got != v {
		t.Fatalf("got %+v, want %+v", got, v)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes")
	}
}

func TestViewerUnknownDiscriminant(t *testing.T) {
	_, _, err := DecodeViewer([]byte{0x7f, 0, 0, 0, 0, 0, 0, 0, 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*IllegalViewerDiscriminantError); !ok {
		t.Fatalf("got %T", err)
	}
}

func TestViewRoundTrip(t *testing.T) {
	v := View{Canvas: Canvas{BaseURL: "https://x.test"}, Viewer: NewUserViewer(42)}
	b, err := v.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(b) != ViewSerLen {
		t.Fatalf("len = %d, want %d", len(b), ViewSerLen)
	}
	if ViewSerLen != 73 {
		t.Fatalf("ViewSerLen = %d, want 73", ViewSerLen)
	}
	got, rest, err := DecodeView(b)
	if err != nil {
		t.Fatalf("DecodeView: %v", err)
	}
	if got != v {
		t.Fatalf("got %+v, want %+v", got, v)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes")
	}
}

func TestBuildKeyLexicographicMonotonicity(t *testing.T) {
	view := View{Canvas: Canvas{BaseURL: "https://x.test"}, Viewer: NewUserViewer(1)}
	a, err := BuildKey(view, Id(7))
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildKey(view, Id(9))
	if err != nil {
		t.Fatal(err)
	}
	if !(string(a) < string(b)) {
		t.Fatal("BuildKey(7) should sort before BuildKey(9)")
	}
}

func TestIncrementKey(t *testing.T) {
	cases := []struct {
		in, want []byte
	}{
		{[]byte{0x00}, []byte{0x01}},
		{[]byte{0x00, 0xff}, []byte{0x01, 0x00}},
		{[]byte{0xff, 0xff}, []byte{0x00, 0x00}},
	}
	for _, c := range cases {
		got := IncrementKey(c.in)
		if string(got) != string(c.want) {
			t.Fatalf("IncrementKey(%x) = %x, want %x", c.in, got, c.want)
		}
	}
}
