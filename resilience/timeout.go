package resilience

import (
	"context"
	"errors"
	"time"
)

// ExecuteWithTimeout runs op with a context that expires after timeout.
// A non-positive timeout runs op with ctx unchanged. When the deadline is
// what ended the operation, ErrTimeout is returned in place of op's error.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	if timeout <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := op(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
