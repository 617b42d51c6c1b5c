package viewcache

import "fmt"

// StoreError wraps any error raised by a backing store. It is never
// retried by the cache core; callers decide whether to surface or retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("viewcache: store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// SerializationError and DeserializationError indicate either a corrupted
// store or a protocol mismatch. They are never silently dropped.
type SerializationError struct{ Err error }

func (e *SerializationError) Error() string { return fmt.Sprintf("viewcache: serialization: %v", e.Err) }
func (e *SerializationError) Unwrap() error { return e.Err }

type DeserializationError struct{ Err error }

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("viewcache: deserialization: %v", e.Err)
}
func (e *DeserializationError) Unwrap() error { return e.Err }

// UnexpectedStreamYieldError reports a violation of the ordering or
// length precondition an input stream was required to satisfy.
type UnexpectedStreamYieldError struct {
	Expected string
	Actual   string
}

func (e *UnexpectedStreamYieldError) Error() string {
	return fmt.Sprintf("viewcache: expected %s but got %s", e.Expected, e.Actual)
}

// IllegalCanvasBaseURLError reports a view-serialization failure.
type IllegalCanvasBaseURLError struct {
	BaseURL string
	Problem string
}

func (e *IllegalCanvasBaseURLError) Error() string {
	return fmt.Sprintf("viewcache: illegal canvas base url %q: %s", e.BaseURL, e.Problem)
}

// IllegalViewerDiscriminantError reports a corrupt stored view, typically
// from cross-version data.
type IllegalViewerDiscriminantError struct {
	Discriminant byte
}

func (e *IllegalViewerDiscriminantError) Error() string {
	return fmt.Sprintf("viewcache: illegal viewer discriminant: %d", e.Discriminant)
}

// Diagnostic is the structured JSON shape an outer HTTP surface may render
// for a user-visible failure, per spec §7. viewcache does not itself
// expose an HTTP surface; this type exists for callers that do.
type Diagnostic struct {
	Description string  `json:"description"`
	Source      string  `json:"source,omitempty"`
	Code        string  `json:"code,omitempty"`
	Help        string  `json:"help,omitempty"`
	URL         string  `json:"url,omitempty"`
}

// NewDiagnostic builds a Diagnostic from an error, classifying well-known
// viewcache error types into a stable code.
func NewDiagnostic(err error) Diagnostic {
	d := Diagnostic{Description: err.Error()}
	switch e := err.(type) {
	case *StoreError:
		d.Code = "store_error"
		d.Source = e.Op
	case *SerializationError:
		d.Code = "serialization_error"
	case *DeserializationError:
		d.Code = "deserialization_error"
	case *UnexpectedStreamYieldError:
		d.Code = "unexpected_stream_yield"
	case *IllegalCanvasBaseURLError:
		d.Code = "illegal_canvas_base_url"
	case *IllegalViewerDiscriminantError:
		d.Code = "illegal_viewer_discriminant"
	default:
		d.Code = "internal_error"
	}
	return d
}
