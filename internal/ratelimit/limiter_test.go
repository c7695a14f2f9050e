package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"medparse/internal/ratelimit"
	"medparse/mocks"
)

func TestLimiter_AllowsUpToCeiling(t *testing.T) {
	store := ratelimit.NewMemoryCounter()
	limiter := ratelimit.NewLimiter(store, "single", 3, time.Minute)

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(context.Background(), "alice")
		assert.NoError(t, err)
		assert.True(t, decision.Allowed)
	}

	decision, err := limiter.Allow(context.Background(), "alice")
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, decision.RetryAfter, time.Minute)
}

func TestLimiter_WindowRollover(t *testing.T) {
	now := time.Now()
	store := ratelimit.NewMemoryCounter(ratelimit.WithClock(func() time.Time { return now }))
	limiter := ratelimit.NewLimiter(store, "single", 1, 10*time.Second)

	decision, _ := limiter.Allow(context.Background(), "alice")
	assert.True(t, decision.Allowed)

	// Ceiling reached halfway through the window.
	now = now.Add(4 * time.Second)
	decision, _ = limiter.Allow(context.Background(), "alice")
	assert.False(t, decision.Allowed)
	assert.Equal(t, 6*time.Second, decision.RetryAfter)

	// A fresh window admits again.
	now = now.Add(7 * time.Second)
	decision, _ = limiter.Allow(context.Background(), "alice")
	assert.True(t, decision.Allowed)
}

func TestLimiter_IdentitiesAndScopesAreIndependent(t *testing.T) {
	store := ratelimit.NewMemoryCounter()
	single := ratelimit.NewLimiter(store, "single", 1, time.Minute)
	batch := ratelimit.NewLimiter(store, "batch", 1, time.Minute)

	d, _ := single.Allow(context.Background(), "alice")
	assert.True(t, d.Allowed)
	d, _ = single.Allow(context.Background(), "alice")
	assert.False(t, d.Allowed)

	// Exhausting alice's single quota affects neither bob nor alice's batch quota.
	d, _ = single.Allow(context.Background(), "bob")
	assert.True(t, d.Allowed)
	d, _ = batch.Allow(context.Background(), "alice")
	assert.True(t, d.Allowed)
}

func TestLimiter_StoreErrorPropagates(t *testing.T) {
	store := new(mocks.MockCounterStore)
	store.On("Incr", mock.Anything, "single:alice", time.Minute).
		Return(int64(0), time.Duration(0), errors.New("redis down"))
	limiter := ratelimit.NewLimiter(store, "single", 5, time.Minute)

	_, err := limiter.Allow(context.Background(), "alice")

	assert.Error(t, err)
	store.AssertExpectations(t)
}

func TestMemoryCounter_CountsWithinWindow(t *testing.T) {
	now := time.Now()
	store := ratelimit.NewMemoryCounter(ratelimit.WithClock(func() time.Time { return now }))

	count, expiresIn, err := store.Incr(context.Background(), "k", 10*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 10*time.Second, expiresIn)

	now = now.Add(3 * time.Second)
	count, expiresIn, err = store.Incr(context.Background(), "k", 10*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 7*time.Second, expiresIn)

	// Window expired: the count starts over.
	now = now.Add(8 * time.Second)
	count, _, err = store.Incr(context.Background(), "k", 10*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
