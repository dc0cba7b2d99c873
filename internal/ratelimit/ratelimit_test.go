package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, ok, "keys are counted separately")

	now = now.Add(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, ok, "a new window starts after expiry")
}

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (s *stubLimiter) Allow(context.Context, string) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

func TestBreakerLimiter_PassesThrough(t *testing.T) {
	next := &stubLimiter{allowed: false}
	l := NewBreakerLimiter(next)

	ok, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, next.calls)
}

func TestBreakerLimiter_FailsOpen(t *testing.T) {
	next := &stubLimiter{err: errors.New("connection refused")}
	l := NewBreakerLimiter(next)

	for i := 0; i < 4; i++ {
		ok, err := l.Allow(context.Background(), "k")
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, gobreaker.StateOpen, l.State())

	ok, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, next.calls, "open breaker skips the backing limiter")
}
