package ratelimit

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"task-manager.com/task-manager/internal/logging"
)

// BreakerLimiter guards another limiter with a circuit breaker. While the
// breaker is open, or the wrapped limiter fails, requests are allowed.
type BreakerLimiter struct {
	next Limiter
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerLimiter(next Limiter) *BreakerLimiter {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rate-limiter",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("circuit breaker %s changed from %s to %s", name, from.String(), to.String())
		},
	})

	return &BreakerLimiter{next: next, cb: cb}
}

func (b *BreakerLimiter) Allow(ctx context.Context, key string) (bool, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Allow(ctx, key)
	})
	if err != nil {
		logging.Logger.WithError(err).Debug("rate limiter failing open")
		return true, nil
	}
	return result.(bool), nil
}

func (b *BreakerLimiter) State() gobreaker.State {
	return b.cb.State()
}
