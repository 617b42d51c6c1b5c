// Package framing implements the length-delimited binary framing the
// update RPC protocol sends Request/Response messages in, one frame
// per message. It follows the same bounds-checked, versioned-header
// idiom as this codebase's other wire formats (see internal/entrycodec).
package framing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	version byte = 1

	// MaxFrameSize bounds how large a single frame's payload may be,
	// guarding a reader against a corrupt or hostile length prefix
	// requesting an unbounded allocation.
	MaxFrameSize = 64 << 20 // 64 MiB
)

var magic4 = [...]byte{'E', 'B', 'R', 'C'}

// ErrCorrupt is returned when a frame header doesn't conform to the
// expected magic/version/length structure.
var ErrCorrupt = errors.New("framing: corrupt frame header")

// ErrFrameTooLarge is returned when a frame's declared length exceeds
// MaxFrameSize.
var ErrFrameTooLarge = errors.New("framing: frame exceeds maximum size")

// WriteFrame writes payload as one frame:
//
//	magic(4) | ver(1) | len(u32) | payload(len)
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 4 + len(payload))
	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadFrame reads and returns the payload of the next frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4 + 1 + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	if !bytes.Equal(header[:4], magic4[:]) || header[4] != version {
		return nil, ErrCorrupt
	}

	length := binary.BigEndian.Uint32(header[5:9])
	if length > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
