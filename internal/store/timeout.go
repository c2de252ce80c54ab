package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is returned when a store call exceeds its per-operation timeout
	ErrTimeout = errors.New("store operation timed out")

	// ErrPanic wraps a panic raised by a store call running under a timeout
	ErrPanic = errors.New("store call panicked")
)

// CallWithTimeout runs fn with a derived deadline. The deadline is enforced
// even when fn ignores its context; a late result is discarded. A zero or
// negative timeout calls fn directly.
//
// Expiry of the per-operation deadline is reported as ErrTimeout. Cancellation
// of the parent context is reported as the parent's error so callers can tell
// the two apart.
func CallWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrPanic, r)}
			}
		}()
		val, err := fn(opCtx)
		done <- result{val, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return r.val, r.err
	case <-opCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
