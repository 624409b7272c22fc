package util_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeworks/azscope/pkg/log"
	"github.com/scopeworks/azscope/util"
)

func testLogger() log.Logger {
	return log.New(log.WithOutput(io.Discard))
}

func TestDoWithRetrySucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0

	err := util.DoWithRetry(context.Background(), "noop", 10, 0, testLogger(), log.DebugLevel, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithRetryEventualSuccess(t *testing.T) {
	t.Parallel()

	calls := 0

	err := util.DoWithRetry(context.Background(), "flaky", 10, 0, testLogger(), log.DebugLevel, func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return fmt.Errorf("transient failure %d", calls)
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls, "must stop retrying on the first success")
}

func TestDoWithRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0

	err := util.DoWithRetry(context.Background(), "always failing", 10, 0, testLogger(), log.DebugLevel, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("persistent failure")
	})

	require.Error(t, err)
	assert.Equal(t, 10, calls, "attempt count must never exceed the ceiling")

	var exhausted util.MaxAttemptsExceeded
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 10, exhausted.MaxAttempts)
	assert.ErrorContains(t, exhausted.LastErr, "persistent failure")
}

func TestDoWithRetryFatalErrorShortCircuits(t *testing.T) {
	t.Parallel()

	calls := 0

	err := util.DoWithRetry(context.Background(), "fatal", 10, 0, testLogger(), log.DebugLevel, func(ctx context.Context) error {
		calls++
		return util.FatalError{Underlying: fmt.Errorf("do not retry")}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var fatal util.FatalError
	assert.ErrorAs(t, err, &fatal)
}

func TestDoWithRetryHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0

	err := util.DoWithRetry(ctx, "cancelled", 10, 0, testLogger(), log.DebugLevel, func(ctx context.Context) error {
		calls++
		cancel()

		return fmt.Errorf("failure under cancellation")
	})

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
