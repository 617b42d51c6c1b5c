package viewcache

// Coalesce returns def when v is the zero value of T, otherwise v. It
// is the shared "apply a default" helper sibling packages (fetch,
// cmd/ebauched) use instead of each writing their own nil/empty check.
func Coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
