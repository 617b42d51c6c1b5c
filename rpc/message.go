// Package rpc implements the update wire protocol between a client and
// this cache's server: a client asks the server either to Fetch (pull
// fresh data from Canvas into a view) or to Update (stream back
// whatever in a view has changed since a given time), and the server
// replies with a sequence of framed Response messages.
package rpc

import (
	"fmt"
	"time"

	"github.com/canvasmirror/viewcache"
)

// ResourceKind identifies which resource family a Request or Response
// concerns.
type ResourceKind byte

const (
	ResourceAssignment ResourceKind = iota
	ResourceCourse
	ResourceSubmission
)

// String renders a ResourceKind the way ParseResourceKind expects it
// back.
func (k ResourceKind) String() string {
	switch k {
	case ResourceAssignment:
		return "assignment"
	case ResourceCourse:
		return "course"
	case ResourceSubmission:
		return "submission"
	default:
		return fmt.Sprintf("resourcekind(%d)", byte(k))
	}
}

// ParseResourceKind parses the lowercase resource-family name Canvas
// callers use on the wire.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch s {
	case "assignment":
		return ResourceAssignment, nil
	case "course":
		return ResourceCourse, nil
	case "submission":
		return ResourceSubmission, nil
	default:
		return 0, fmt.Errorf("rpc: no such resource kind %q", s)
	}
}

// RequestKind discriminates the union stored in Request.
type RequestKind byte

const (
	RequestFetch RequestKind = iota
	RequestUpdate
)

// Request is one message a client sends the server.
//
//   - Fetch asks the server to pull fresh data for View from Canvas,
//     authenticating as CanvasToken.
//   - Update asks the server to stream back every key of ResourceKind
//     under View, with the resource payload included for entries whose
//     Updated timestamp is after Since.
type Request struct {
	Kind RequestKind `msgpack:"kind"`

	// Fetch fields.
	View        viewcache.View `msgpack:"view"`
	CanvasToken string         `msgpack:"canvas_token,omitempty"`

	// Update fields.
	ResourceKind ResourceKind `msgpack:"resource_kind,omitempty"`
	Since        time.Time    `msgpack:"since,omitempty"`
}

// NewFetchRequest builds a Fetch request.
func NewFetchRequest(view viewcache.View, canvasToken string) Request {
	return Request{Kind: RequestFetch, View: view, CanvasToken: canvasToken}
}

// NewUpdateRequest builds an Update request.
func NewUpdateRequest(kind ResourceKind, view viewcache.View, since time.Time) Request {
	return Request{Kind: RequestUpdate, ResourceKind: kind, View: view, Since: since}
}

// ResponseKind discriminates the union stored in Response.
type ResponseKind byte

const (
	ResponseFetchProgress ResponseKind = iota
	ResponseUpdate
)

// Response is one message the server sends the client.
//
//   - FetchProgress reports that the server has finished fetching one
//     resource kind as part of an in-progress Fetch request.
//   - Update carries one reconciled key/resource pair: Resource is nil
//     when the client's existing copy (identified by Key) is already
//     current and need not be rewritten.
type Response struct {
	Kind ResponseKind `msgpack:"kind"`

	// FetchProgress fields.
	ResourceKind ResourceKind `msgpack:"resource_kind,omitempty"`

	// Update fields.
	Key      []byte `msgpack:"key,omitempty"`
	Resource []byte `msgpack:"resource,omitempty"`
}

// NewFetchProgressResponse builds a FetchProgress response.
func NewFetchProgressResponse(kind ResourceKind) Response {
	return Response{Kind: ResponseFetchProgress, ResourceKind: kind}
}

// NewUpdateResponse builds an Update response. A nil resource tells the
// client its existing copy of key is still current.
func NewUpdateResponse(key, resource []byte) Response {
	return Response{Kind: ResponseUpdate, Key: key, Resource: resource}
}
