// Package throttle tracks how much request budget remains against a
// Canvas instance's rate limit, so the server can refuse to dispatch a
// Fetch request it already knows would get throttled rather than
// burning a round trip to find out.
package throttle

import "context"

// Budget tracks remaining request cost per Canvas instance.
type Budget interface {
	// Reserve attempts to deduct cost from canvas's remaining budget.
	// ok is false when there isn't enough budget left; the caller
	// should treat this the same as an upstream throttling response.
	Reserve(ctx context.Context, canvas string, cost float64) (ok bool, err error)

	// Close releases any background resources.
	Close(ctx context.Context) error
}

// NopBudget never throttles: Reserve always succeeds. It is the
// default a caller gets when no Budget is configured, the same
// nil-coalescing role viewcache.NopHooks/NopLogger play for those
// interfaces.
type NopBudget struct{}

var _ Budget = NopBudget{}

func (NopBudget) Reserve(context.Context, string, float64) (bool, error) { return true, nil }
func (NopBudget) Close(context.Context) error                            { return nil }
