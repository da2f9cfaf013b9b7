package database

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/classeapp/classe/core"
)

const (
	writeAttempts = 3
	writeTimeout  = 5 * time.Second
)

// permanentError marks a failure that retrying cannot fix (business-rule
// rejections, missing rows). withRetry returns the inner error unchanged.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }

func permanent(err error) error { return permanentError{err: err} }

// withRetry runs op with a per-attempt timeout and a short growing backoff,
// closing the fire-and-forget gap of the original write path. Exhausted
// attempts surface as core.ErrWriteFailed; local view state is never touched
// so there is nothing to roll back.
func withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = op(opCtx)
		cancel()
		if err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if ctx.Err() != nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return errors.Wrapf(core.ErrWriteFailed, "after %d attempts: %v", writeAttempts, err)
}
