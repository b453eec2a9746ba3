// Package ratelimit paces page interactions with fixed settle delays.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer waits out a settle delay after an action on the page.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// Fixed sleeps exactly the requested delay, returning early when ctx ends.
type Fixed struct{}

func (Fixed) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Recorder notes the requested delays without sleeping.
type Recorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *Recorder) Wait(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.waits = append(r.waits, d)
	return ctx.Err()
}

func (r *Recorder) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

func (r *Recorder) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total time.Duration
	for _, d := range r.waits {
		total += d
	}
	return total
}
