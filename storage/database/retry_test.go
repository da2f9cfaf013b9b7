package database

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/poll"
)

func TestWithRetry(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		var calls int
		err := withRetry(context.Background(), func(ctx context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		var calls int
		err := withRetry(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection reset")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted attempts surface as write failure", func(t *testing.T) {
		var calls int
		err := withRetry(context.Background(), func(ctx context.Context) error {
			calls++
			return errors.New("connection reset")
		})
		assert.Equal(t, core.ErrWriteFailed, errors.Cause(err))
		assert.Equal(t, writeAttempts, calls)
	})

	t.Run("permanent error short-circuits with the inner error", func(t *testing.T) {
		var calls int
		err := withRetry(context.Background(), func(ctx context.Context) error {
			calls++
			return permanent(poll.ErrAlreadyVoted)
		})
		assert.Equal(t, poll.ErrAlreadyVoted, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var calls int
		err := withRetry(ctx, func(ctx context.Context) error {
			calls++
			cancel()
			return errors.New("connection reset")
		})
		assert.Equal(t, core.ErrWriteFailed, errors.Cause(err))
		assert.Equal(t, 1, calls)
	})
}
