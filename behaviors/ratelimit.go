package behaviors

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// RateLimit applies a token bucket per request type. Each send waits for a token using the
// call context, so a canceled or expired context ends the wait with its error. A wait that
// could not finish before the deadline fails with context.DeadlineExceeded.
// Non-positive rps or burst disables limiting.
func RateLimit(rps float64, burst int) cmed.Behavior {
	if rps <= 0 || burst <= 0 {
		return cmed.BehaviorFunc(func(ctx context.Context, _ *cmed.Call, next cmed.Next[any]) (any, error) {
			return next(ctx)
		})
	}

	l := &limiters{limit: rate.Limit(rps), burst: burst, byType: make(map[string]*rate.Limiter)}

	return cmed.BehaviorFunc(func(ctx context.Context, call *cmed.Call, next cmed.Next[any]) (any, error) {
		if err := l.get(call.RequestType).Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			// Wait refuses early when the token would arrive after the deadline
			return nil, fmt.Errorf("rate limit %s: %w", call.RequestType, context.DeadlineExceeded)
		}

		return next(ctx)
	})
}

type limiters struct {
	limit rate.Limit
	burst int

	mu     sync.Mutex
	byType map[string]*rate.Limiter
}

func (l *limiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.byType[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byType[key] = lim
	}

	return lim
}
