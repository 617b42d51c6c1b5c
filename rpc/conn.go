package rpc

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/canvasmirror/viewcache/internal/framing"
)

// WriteRequest frames and writes req to w.
func WriteRequest(w io.Writer, req Request) error {
	payload, err := msgpack.Marshal(req)
	if err != nil {
		return err
	}
	return framing.WriteFrame(w, payload)
}

// ReadRequest reads and decodes the next Request frame from r.
func ReadRequest(r io.Reader) (Request, error) {
	var req Request
	payload, err := framing.ReadFrame(r)
	if err != nil {
		return req, err
	}
	if err := msgpack.Unmarshal(payload, &req); err != nil {
		return req, err
	}
	return req, nil
}

// WriteResponse frames and writes resp to w.
func WriteResponse(w io.Writer, resp Response) error {
	payload, err := msgpack.Marshal(resp)
	if err != nil {
		return err
	}
	return framing.WriteFrame(w, payload)
}

// ReadResponse reads and decodes the next Response frame from r.
func ReadResponse(r io.Reader) (Response, error) {
	var resp Response
	payload, err := framing.ReadFrame(r)
	if err != nil {
		return resp, err
	}
	if err := msgpack.Unmarshal(payload, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}
