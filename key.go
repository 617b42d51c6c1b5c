package viewcache

import "encoding/binary"

// Key is a fixed-width, order-preserving binary encoding. Concatenating
// two serialized keys must preserve lexicographic ordering over the
// concatenation of their logical values, which is what lets
// ReplaceViewOrdered treat a view's region of the store as a contiguous
// byte range.
type Key interface {
	// SerLen is the exact number of bytes AppendTo appends.
	SerLen() int
	// AppendTo appends the serialized key to dst and returns the result.
	AppendTo(dst []byte) ([]byte, error)
}

// Id is a Canvas resource identifier: a big-endian uint64 so that
// numeric order matches byte order.
type Id uint64

const idSerLen = 8

func (Id) SerLen() int { return idSerLen }

func (id Id) AppendTo(dst []byte) ([]byte, error) {
	var buf [idSerLen]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return append(dst, buf[:]...), nil
}

// DecodeId reads a big-endian Id from the front of b, returning the
// remaining bytes.
func DecodeId(b []byte) (Id, []byte, error) {
	if len(b) < idSerLen {
		return 0, nil, &UnexpectedStreamYieldError{Expected: "8 bytes of canvas id", Actual: "end of stream"}
	}
	return Id(binary.BigEndian.Uint64(b[:idSerLen])), b[idSerLen:], nil
}

// MaxCanvasLength bounds a Canvas base URL's serialized form. Instances
// shorter than this are NUL-padded; longer ones fail to serialize. This
// fixed width is what prevents accidental prefix overlap between views
// sharing a key range.
const MaxCanvasLength = 64

// Canvas identifies a Canvas LMS instance by its base URL.
type Canvas struct {
	BaseURL string
}

func (Canvas) SerLen() int { return MaxCanvasLength }

func (c Canvas) AppendTo(dst []byte) ([]byte, error) {
	if len(c.BaseURL) > MaxCanvasLength {
		return nil, &IllegalCanvasBaseURLError{BaseURL: c.BaseURL, Problem: "exceeds maximum length"}
	}
	for i := 0; i < len(c.BaseURL); i++ {
		if c.BaseURL[i] == 0 {
			return nil, &IllegalCanvasBaseURLError{BaseURL: c.BaseURL, Problem: "contains NUL byte"}
		}
	}
	dst = append(dst, c.BaseURL...)
	for i := len(c.BaseURL); i < MaxCanvasLength; i++ {
		dst = append(dst, 0)
	}
	return dst, nil
}

// DecodeCanvas reads a fixed-width, NUL-padded Canvas from the front of b.
func DecodeCanvas(b []byte) (Canvas, []byte, error) {
	if len(b) < MaxCanvasLength {
		return Canvas{}, nil, &UnexpectedStreamYieldError{Expected: "64 bytes of canvas base url", Actual: "end of stream"}
	}
	raw := b[:MaxCanvasLength]
	n := len(raw)
	for i, c := range raw {
		if c == 0 {
			n = i
			break
		}
	}
	return Canvas{BaseURL: string(raw[:n])}, b[MaxCanvasLength:], nil
}

// ViewerKind discriminates the union stored in Viewer.
type ViewerKind byte

const (
	// ViewerUser identifies a viewer acting as a specific Canvas user.
	ViewerUser ViewerKind = 0
)

// Viewer is a tagged union over the possible viewpoints a view can be
// scoped to. It currently has one variant, User, but is encoded as a
// discriminant plus an 8-byte payload so additional variants can be
// added without changing the serialized width.
type Viewer struct {
	Kind   ViewerKind
	UserID Id
}

// NewUserViewer builds a Viewer scoped to a specific Canvas user.
func NewUserViewer(id Id) Viewer { return Viewer{Kind: ViewerUser, UserID: id} }

const viewerSerLen = 1 + idSerLen

func (Viewer) SerLen() int { return viewerSerLen }

func (v Viewer) AppendTo(dst []byte) ([]byte, error) {
	switch v.Kind {
	case ViewerUser:
		dst = append(dst, byte(ViewerUser))
		return v.UserID.AppendTo(dst)
	default:
		return nil, &IllegalViewerDiscriminantError{Discriminant: byte(v.Kind)}
	}
}

// DecodeViewer reads a Viewer from the front of b.
func DecodeViewer(b []byte) (Viewer, []byte, error) {
	if len(b) < 1 {
		return Viewer{}, nil, &UnexpectedStreamYieldError{Expected: "viewer discriminant", Actual: "end of stream"}
	}
	discriminant := ViewerKind(b[0])
	rest := b[1:]
	switch discriminant {
	case ViewerUser:
		id, rest, err := DecodeId(rest)
		if err != nil {
			return Viewer{}, nil, err
		}
		return Viewer{Kind: ViewerUser, UserID: id}, rest, nil
	default:
		return Viewer{}, nil, &IllegalViewerDiscriminantError{Discriminant: byte(discriminant)}
	}
}

// View scopes the cache to a (Canvas instance, viewer) pair. All cache
// keys for a single view share this prefix, so a view's data forms one
// contiguous, sorted byte range in any Store.
type View struct {
	Canvas Canvas
	Viewer Viewer
}

const ViewSerLen = MaxCanvasLength + viewerSerLen

func (View) SerLen() int { return ViewSerLen }

func (v View) AppendTo(dst []byte) ([]byte, error) {
	dst, err := v.Canvas.AppendTo(dst)
	if err != nil {
		return nil, err
	}
	return v.Viewer.AppendTo(dst)
}

// Serialize returns the fixed-width encoding of v.
func (v View) Serialize() ([]byte, error) {
	return v.AppendTo(make([]byte, 0, ViewSerLen))
}

// DecodeView reads a View from the front of b.
func DecodeView(b []byte) (View, []byte, error) {
	canvas, rest, err := DecodeCanvas(b)
	if err != nil {
		return View{}, nil, err
	}
	viewer, rest, err := DecodeViewer(rest)
	if err != nil {
		return View{}, nil, err
	}
	return View{Canvas: canvas, Viewer: viewer}, rest, nil
}

// BuildKey concatenates a view's serialized form with a resource key's,
// producing the full store key for that resource under that view.
func BuildKey(view View, key Key) ([]byte, error) {
	buf := make([]byte, 0, ViewSerLen+key.SerLen())
	buf, err := view.AppendTo(buf)
	if err != nil {
		return nil, err
	}
	return key.AppendTo(buf)
}

// IncrementKey returns the lexicographically next byte slice after key,
// by adding one to the last byte with carry propagation into preceding
// bytes. A key of all 0xFF bytes increments to an empty-carry state
// (all bytes wrap to 0); callers that need a strict successor for such a
// key should treat that case as "no successor" since it cannot arise
// from well-formed fixed-width keys used by this package.
func IncrementKey(key []byte) []byte {
	out := make([]byte, len(key))
	copy(out, key)
	for i := len(out) - 1; i >= 0; i-- {
		out[i]++
		if out[i] != 0 {
			break
		}
	}
	return out
}
