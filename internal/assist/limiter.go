package assist

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled wraps a provider with a rate limiter so bursts of incoming
// requests do not flood the assist API.
type Throttled struct {
	inner   Provider
	limiter *rate.Limiter
}

// Throttle limits calls to requestsPerSecond with the given burst. A nil
// inner provider stays nil (assist disabled).
func Throttle(inner Provider, requestsPerSecond float64, burst int) Provider {
	if inner == nil {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (t *Throttled) Name() string { return t.inner.Name() }

func (t *Throttled) Complete(ctx context.Context, prompt string) (*Completion, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Complete(ctx, prompt)
}

func (t *Throttled) IsAvailable(ctx context.Context) bool {
	return t.inner.IsAvailable(ctx)
}
