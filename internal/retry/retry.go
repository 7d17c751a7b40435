// Package retry implements bounded exponential backoff with jitter for
// network-facing operations such as cloning the release manifest repository.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Options tunes the backoff schedule.
type Options struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// MinSleep floors the delay between attempts.
	MinSleep time.Duration
	// MaxSleep caps the delay between attempts. Allowing the backoff to
	// exceed this cap would forfeit the benefit of jitter.
	MaxSleep time.Duration
	// Backoff is the exponential growth factor.
	Backoff float64
}

// DefaultOptions mirrors the pipeline's historical retry schedule.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		MinSleep:    1 * time.Second,
		MaxSleep:    64 * time.Second,
		Backoff:     2,
	}
}

// Sleep returns the delay before the given 1-based attempt:
// uniform(0.5,1) * backoff^attempt, clipped to [MinSleep, MaxSleep].
func (o Options) Sleep(attempt int) time.Duration {
	jitter := 0.5 + rand.Float64()/2
	d := time.Duration(jitter * math.Pow(o.Backoff, float64(attempt)) * float64(time.Second))
	if d < o.MinSleep {
		return o.MinSleep
	}
	if d > o.MaxSleep {
		return o.MaxSleep
	}
	return d
}

// Do runs fn until it succeeds or attempts are exhausted, sleeping between
// tries. The context cancels waiting as well as the next attempt.
func Do(ctx context.Context, opts Options, fn func() error) error {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	var last error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = fn()
		if last == nil {
			return nil
		}
		if attempt == opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Sleep(attempt)):
		}
	}
	return fmt.Errorf("after %d attempts: %w", opts.MaxAttempts, last)
}
