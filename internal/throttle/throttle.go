// Package throttle implements the randomized pause taken between exhibitor blocks.
package throttle

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Throttle waits a uniformly random duration in [Min, Max].
type Throttle struct {
	min   time.Duration
	max   time.Duration
	draw  func(n int64) int64
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Throttle. It returns an error when the bounds are negative or
// inverted.
func New(minDelay, maxDelay time.Duration) (*Throttle, error) {
	if minDelay < 0 || maxDelay < 0 {
		return nil, fmt.Errorf("throttle bounds must be >= 0, got [%s, %s]", minDelay, maxDelay)
	}
	if minDelay > maxDelay {
		return nil, fmt.Errorf("throttle min %s exceeds max %s", minDelay, maxDelay)
	}
	return &Throttle{
		min:   minDelay,
		max:   maxDelay,
		draw:  rand.Int64N,
		sleep: sleepWithContext,
	}, nil
}

// Next draws the next delay without waiting.
func (t *Throttle) Next() time.Duration {
	span := int64(t.max - t.min)
	if span <= 0 {
		return t.min
	}
	return t.min + time.Duration(t.draw(span+1))
}

// Wait blocks for the next delay or until ctx is done. It returns the delay drawn.
func (t *Throttle) Wait(ctx context.Context) (time.Duration, error) {
	d := t.Next()
	if err := t.sleep(ctx, d); err != nil {
		return d, err
	}
	return d, nil
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("throttle sleep: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
