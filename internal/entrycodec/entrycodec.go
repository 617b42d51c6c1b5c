// Package entrycodec contains the compact, versioned on-the-wire format
// used by viewcache to store CacheEntry values in a store.Store.
//
// Encoding choices mirror the rest of this codebase's wire formats:
//   - All integers are big-endian.
//   - A 4-byte ASCII magic ("VENT") allows quick format discrimination.
//   - A 1-byte version enables forward/backward compatibility in place.
//   - The resource payload after the fixed header is codec-opaque
//     ([]byte), encoded by msgpack at the call site.
//   - Decoders are bounds-checked: every slice operation is preceded by
//     a length check, and a frame must consume the entire buffer (no
//     trailing bytes), which catches corruption or foreign writers early.
package entrycodec

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1
)

// ErrCorrupt is returned when a byte slice doesn't conform to the
// expected structure (bad magic, version, or lengths).
var ErrCorrupt = errors.New("entrycodec: corrupt entry")

var magic4 = [...]byte{'V', 'E', 'N', 'T'}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode packages a resource payload with its Written and Updated unix
// nanosecond timestamps.
//
// Layout (big-endian):
//
//	magic(4) | ver(1) | written(i64) | updated(i64) | plen(u32) | payload(plen)
func Encode(written, updated int64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 8 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], uint64(written))
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(updated))
	buf.Write(u8[:])

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode parses an entry, returning its Written/Updated timestamps and a
// zero-copy subslice of b holding the payload. The payload must be
// treated as read-only, or copied if it needs to outlive b.
func Decode(b []byte) (written, updated int64, payload []byte, err error) {
	const hdr = 4 + 1 + 8 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return 0, 0, nil, ErrCorrupt
	}

	off := 5
	written = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	updated = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen < 0 || off+plen != len(b) {
		return 0, 0, nil, ErrCorrupt
	}
	return written, updated, b[off : off+plen], nil
}
