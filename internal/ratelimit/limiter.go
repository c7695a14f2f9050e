package ratelimit

import (
	"context"
	"time"

	"medparse/internal/domain"
	"medparse/internal/port"
)

// Limiter admits or rejects requests for one route scope against a shared
// counter. The ceiling and window come from configuration; the counter store
// provides the per-identity atomicity.
type Limiter struct {
	store  port.CounterStore
	scope  string
	limit  int
	window time.Duration
}

// NewLimiter creates a Limiter for the given scope (e.g. "single", "batch").
func NewLimiter(store port.CounterStore, scope string, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, scope: scope, limit: limit, window: window}
}

// Allow records one request for identity and decides admission. When the
// ceiling is exceeded the decision carries the time remaining in the window.
func (l *Limiter) Allow(ctx context.Context, identity string) (domain.AdmissionDecision, error) {
	count, expiresIn, err := l.store.Incr(ctx, l.scope+":"+identity, l.window)
	if err != nil {
		return domain.AdmissionDecision{}, err
	}
	if count > int64(l.limit) {
		return domain.AdmissionDecision{Allowed: false, RetryAfter: expiresIn}, nil
	}
	return domain.AdmissionDecision{Allowed: true}, nil
}
