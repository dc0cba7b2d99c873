package ratelimit

import "context"

// Limiter decides whether another request from key fits in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
