package entrycodec

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("payload bytes")
	encoded := Encode(1000, 2000, payload)

	written, updated, got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if written != 1000 || updated != 2000 {
		t.Fatalf("written=%d updated=%d, want 1000/2000", written, updated)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	encoded := Encode(0, 0, nil)
	_, _, got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, _, _, err := Decode([]byte("not an entry at all"))
	if err != ErrCorrupt {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	encoded := Encode(1, 2, []byte("hello"))
	_, _, _, err := Decode(encoded[:len(encoded)-2])
	if err != ErrCorrupt {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestDecodeRejectsTrailingGarbage(t *testing.T) {
	encoded := Encode(1, 2, []byte("hello"))
	encoded = append(encoded, 0xff)
	_, _, _, err := Decode(encoded)
	if err != ErrCorrupt {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}
