package throttle

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBudget shares per-canvas request budgets across processes.
// Each canvas gets a float counter that is reset to Capacity on expiry
// rather than actively refilled, so a canvas that goes quiet for
// Window simply starts fresh next time Reserve touches it. Reserve
// reads the counter with GET and then either seeds it with SET (with
// Window as its expiry) or decrements it with INCRBYFLOAT; these are
// separate commands, not a pipeline or a transaction.
type RedisBudget struct {
	rdb      redis.UniversalClient
	ns       string
	capacity float64
	window   time.Duration
}

var _ Budget = (*RedisBudget)(nil)

// NewRedisBudget constructs a RedisBudget. Each canvas's counter resets
// to capacity window after its first reservation.
func NewRedisBudget(client redis.UniversalClient, namespace string, capacity float64, window time.Duration) *RedisBudget {
	return &RedisBudget{rdb: client, ns: namespace, capacity: capacity, window: window}
}

func (b *RedisBudget) key(canvas string) string { return "throttle:" + b.ns + ":" + canvas }

// Reserve decrements canvas's remaining budget by cost. The first
// reservation for a canvas within a window seeds the counter at
// capacity-cost and sets the expiry; later reservations just decrement.
func (b *RedisBudget) Reserve(ctx context.Context, canvas string, cost float64) (bool, error) {
	key := b.key(canvas)

	remaining, err := b.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		if cost > b.capacity {
			return false, nil
		}
		if err := b.rdb.Set(ctx, key, b.capacity-cost, b.window).Err(); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	have, err := strconv.ParseFloat(remaining, 64)
	if err != nil {
		return false, err
	}
	if have < cost {
		return false, nil
	}

	if err := b.rdb.IncrByFloat(ctx, key, -cost).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the underlying Redis client.
func (b *RedisBudget) Close(_ context.Context) error { return b.rdb.Close() }
