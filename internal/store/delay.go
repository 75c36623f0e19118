package store

import (
	"context"
	"math/rand/v2"
	"time"
)

// Op names a store operation for the delay strategy and for metrics.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpDelete Op = "delete"
)

// Delay is the simulated-latency hook. It runs once at the start of every
// store operation, before the slot is touched, and returns ctx.Err() when the
// context ends first, in which case the operation is abandoned.
type Delay func(ctx context.Context, op Op) error

// NoDelay returns immediately. Tests use it.
func NoDelay() Delay {
	return func(ctx context.Context, _ Op) error {
		return ctx.Err()
	}
}

// Fixed waits d before every operation.
func Fixed(d time.Duration) Delay {
	if d <= 0 {
		return NoDelay()
	}
	return func(ctx context.Context, _ Op) error {
		return sleep(ctx, d)
	}
}

// Uniform waits a random duration in [min, max).
func Uniform(min, max time.Duration) Delay {
	if max <= min {
		return Fixed(min)
	}
	return func(ctx context.Context, _ Op) error {
		return sleep(ctx, min+rand.N(max-min))
	}
}

// Reference reproduces the per-operation latencies of the browser build:
// list 300ms, get 200ms, create 500ms, delete 300ms.
func Reference() Delay {
	return PerOp(map[Op]time.Duration{
		OpList:   300 * time.Millisecond,
		OpGet:    200 * time.Millisecond,
		OpCreate: 500 * time.Millisecond,
		OpDelete: 300 * time.Millisecond,
	})
}

// PerOp waits the duration configured for each operation. Operations missing
// from the map do not wait.
func PerOp(durations map[Op]time.Duration) Delay {
	return func(ctx context.Context, op Op) error {
		d, ok := durations[op]
		if !ok || d <= 0 {
			return ctx.Err()
		}
		return sleep(ctx, d)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
