package vinted

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces consecutive requests to the same locale. Each locale gets its
// own token bucket with a burst of one, so locales never slow each other
// down.
type Pacer struct {
	spacing time.Duration
	jitter  time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// PacerOption configures the Pacer.
type PacerOption func(*Pacer)

// WithJitter adds a random delay in [0, d) after each wait.
func WithJitter(d time.Duration) PacerOption {
	return func(p *Pacer) {
		p.jitter = d
	}
}

// NewPacer creates a pacer enforcing at least spacing between requests to
// one locale. A zero spacing disables pacing.
func NewPacer(spacing time.Duration, opts ...PacerOption) *Pacer {
	p := &Pacer{
		spacing:  spacing,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until the locale may send its next request, or ctx is done.
func (p *Pacer) Wait(ctx context.Context, locale string) error {
	if err := p.limiter(locale).Wait(ctx); err != nil {
		return fmt.Errorf("pacing %s: %w", locale, err)
	}
	if p.jitter <= 0 {
		return nil
	}

	t := time.NewTimer(rand.N(p.jitter)) //nolint:gosec // jitter, not security
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("pacing %s: %w", locale, ctx.Err())
	case <-t.C:
		return nil
	}
}

func (p *Pacer) limiter(locale string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[locale]
	if !ok {
		limit := rate.Inf
		if p.spacing > 0 {
			limit = rate.Every(p.spacing)
		}
		l = rate.NewLimiter(limit, 1)
		p.limiters[locale] = l
	}
	return l
}
