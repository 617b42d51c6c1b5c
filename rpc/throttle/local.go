package throttle

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	remaining float64
}

// LocalBudget keeps per-canvas request budgets in-process, refilling
// every canvas back to Capacity on each tick of a background goroutine.
// This is the in-process, no-network-I/O counterpart to RedisBudget,
// mirroring the mutex-guarded-map-plus-ticker shape this codebase uses
// elsewhere for local generation tracking.
type LocalBudget struct {
	mu       sync.Mutex
	entries  map[string]*localEntry
	capacity float64

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

var _ Budget = (*LocalBudget)(nil)

// NewLocalBudget constructs a LocalBudget with the given per-canvas
// capacity, refilled every refillInterval. A non-positive
// refillInterval disables the background refill goroutine; callers may
// then refill manually via Refill.
func NewLocalBudget(capacity float64, refillInterval time.Duration) *LocalBudget {
	b := &LocalBudget{
		entries:  make(map[string]*localEntry),
		capacity: capacity,
	}
	if refillInterval > 0 {
		b.ticker = time.NewTicker(refillInterval)
		b.stopCh = make(chan struct{})
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for {
				select {
				case <-b.ticker.C:
					b.Refill()
				case <-b.stopCh:
					return
				}
			}
		}()
	}
	return b
}

// Reserve deducts cost from canvas's remaining budget, creating a
// fresh, fully-capacitated entry on first use.
func (b *LocalBudget) Reserve(_ context.Context, canvas string, cost float64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[canvas]
	if !ok {
		e = &localEntry{remaining: b.capacity}
		b.entries[canvas] = e
	}
	if e.remaining < cost {
		return false, nil
	}
	e.remaining -= cost
	return true, nil
}

// Refill resets every tracked canvas's budget back to capacity.
func (b *LocalBudget) Refill() {
	b.mu.Lock()
	for _, e := range b.entries {
		e.remaining = b.capacity
	}
	b.mu.Unlock()
}

// Close stops the optional refill goroutine. Safe to call more than
// once.
func (b *LocalBudget) Close(_ context.Context) error {
	b.mu.Lock()
	stopCh := b.stopCh
	ticker := b.ticker
	b.stopCh, b.ticker = nil, nil
	b.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		if ticker != nil {
			ticker.Stop()
		}
		b.wg.Wait()
	}
	return nil
}
