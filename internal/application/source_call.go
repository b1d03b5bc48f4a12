package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phishguard/risk-engine/internal/domain"
)

type callOutcome[T any] struct {
	value T
	err   error
}

// callWithTimeout runs call with a deadline and returns as soon as the
// deadline passes, even if call ignores its context. Errors are wrapped in
// domain.ErrSourceTimeout or domain.ErrSourceFailure.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callOutcome[T], 1)
	go func() {
		var out callOutcome[T]
		defer func() {
			if r := recover(); r != nil {
				out.err = fmt.Errorf("panic: %v", r)
			}
			done <- out
		}()
		out.value, out.err = call(ctx)
	}()

	select {
	case out := <-done:
		switch {
		case out.err == nil:
			return out.value, nil
		case errors.Is(out.err, context.DeadlineExceeded):
			return out.value, fmt.Errorf("%w: %v", domain.ErrSourceTimeout, out.err)
		default:
			return out.value, fmt.Errorf("%w: %v", domain.ErrSourceFailure, out.err)
		}
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", domain.ErrSourceTimeout, timeout)
		}
		return zero, fmt.Errorf("%w: %v", domain.ErrSourceFailure, ctx.Err())
	}
}

// fallbackReason is the metrics label for a failed source call
func fallbackReason(err error) string {
	if errors.Is(err, domain.ErrSourceTimeout) {
		return "timeout"
	}
	return "error"
}
