package port

import (
	"context"
	"time"
)

// CounterStore is a shared fixed-window request counter keyed by caller
// identity. Incr atomically increments the counter for key, starting a new
// window of the given duration if none is active, and returns the count after
// the increment together with the time remaining in the window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, expiresIn time.Duration, err error)
}
