package task

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/taskrun/pkg/logger"
)

// Next continues the middleware chain. A middleware that never calls next
// short-circuits the business logic entirely (rate limiting, circuit
// breaking).
type Next func(ctx context.Context) error

// Middleware wraps the business-logic invocation. Middleware declared on a
// parent definition runs outside middleware declared on a derived one, so for
// Use(A), Use(B) on top of an inherited Use(Base) the order is Base-before,
// A-before, B-before, logic, B-after, A-after, Base-after.
type Middleware func(ctx context.Context, fr *Frame, next Next) error

// chainMiddleware folds the middleware list into a single Next, outermost
// first.
func chainMiddleware(mws []Middleware, fr *Frame, final Next) Next {
	next := final
	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		inner := next
		next = func(ctx context.Context) error {
			return mw(ctx, fr, inner)
		}
	}
	return next
}

// Timeout bounds the business logic with a deadline, failing the task with a
// timeout reason on expiry.
//
// The timed work runs in a goroutine that is abandoned when the deadline
// fires; abandoned work may still mutate the shared Context afterward, so
// callers must not rely on mutation atomicity across a timeout boundary.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, fr *Frame, next Next) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		done := make(chan error, 1)
		go func() {
			done <- next(ctx)
		}()
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return Fail(fmt.Sprintf("timed out after %s", d), "timeout", d.String())
		}
	}
}

// Correlate attaches the task name and chain id to the context logger so
// nested calls and the final record share correlation fields.
func Correlate() Middleware {
	return func(ctx context.Context, fr *Frame, next Next) error {
		log := logger.FromContext(ctx).With(
			"task", fr.Task().Name(),
			"chain_id", fr.Context().Chain().ID(),
		)
		return next(logger.ContextWithLogger(ctx, log))
	}
}
