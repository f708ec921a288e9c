package mongo

import (
	"context"
	"time"
)

// WithTimeout bounds a single repository call. Calls inside a transaction
// keep the session context as is; the transaction is bounded by its caller.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if InTransaction(ctx) {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}
