package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Import traffic is capped at five calls per minute, matching the service
// quota the pipeline was originally tuned for.
const (
	defaultCallsPerMinute = 5
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 2 * time.Second
)

// RateLimited wraps a provider with a shared rate limiter and retry with
// exponential backoff on transient failures.
type RateLimited struct {
	inner      Provider
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// WithRateLimit wraps p with the default limit of five calls per minute.
func WithRateLimit(p Provider, logger *zap.Logger) *RateLimited {
	return WithRateLimitAt(p, rate.Every(time.Minute/defaultCallsPerMinute), defaultCallsPerMinute, logger)
}

// WithRateLimitAt wraps p with an explicit limit and burst.
func WithRateLimitAt(p Provider, limit rate.Limit, burst int, logger *zap.Logger) *RateLimited {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimited{
		inner:      p,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultRetryBaseDelay,
		logger:     logger,
	}
}

// Name returns the wrapped provider's name.
func (r *RateLimited) Name() string { return r.inner.Name() }

// Validate checks the wrapped provider's configuration.
func (r *RateLimited) Validate() error { return r.inner.Validate() }

// Generate waits for a limiter token, then delegates. Failed calls are
// retried with exponentially growing delays until maxRetries is reached.
func (r *RateLimited) Generate(ctx context.Context, req Request) (*Result, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay << (attempt - 1)
			r.logger.Warn("model call failed, retrying",
				zap.String("provider", r.inner.Name()),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := r.inner.Generate(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s: retries exhausted: %w", r.inner.Name(), lastErr)
}
