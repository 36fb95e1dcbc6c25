package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Budget caps the number of AI requests made during one run.
type Budget struct {
	mu    sync.Mutex
	max   int
	count int
}

// NewBudget allows up to max requests; max <= 0 means unlimited.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Allow reserves one request and reports whether it fits in the budget.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.count >= b.max {
		return false
	}
	b.count++
	return true
}

// Used returns the number of requests reserved so far.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Pacer spaces out consecutive operations. The first Wait returns
// immediately; later ones block until interval has passed since the previous.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer builds a Pacer. interval <= 0 disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next operation may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
