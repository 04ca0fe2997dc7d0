package utils

import (
	"context"
	"errors"
	"time"

	"merchantportal/internal/apperrors"
)

var ErrUpstreamTimeout = errors.New("upstream call timed out")

// CallWithTimeout runs fn with a deadline of d. If fn has not returned when the
// deadline passes the caller gets a KindUnavailable error immediately, even if
// fn ignores its context.
func CallWithTimeout[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			var zero T
			return zero, apperrors.Unavailable(ErrUpstreamTimeout)
		}
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, apperrors.Unavailable(ErrUpstreamTimeout)
		}
		return zero, ctx.Err()
	}
}
