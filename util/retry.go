// Package util contains small shared helpers with no domain knowledge.
package util

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/scopeworks/azscope/internal/errors"
	"github.com/scopeworks/azscope/pkg/log"
)

// maxBackoff caps the sleep between retry attempts.
const maxBackoff = 10 * time.Second

// DoWithRetry runs action up to maxAttempts times, sleeping between attempts
// with exponential backoff and jitter starting from baseDelay. It stops as
// soon as one attempt succeeds. Errors wrapped in FatalError and context
// cancellation stop the loop immediately. When every attempt fails, the
// returned error is MaxAttemptsExceeded wrapping the last failure.
func DoWithRetry(ctx context.Context, description string, maxAttempts int, baseDelay time.Duration, logger log.Logger, level log.Level, action func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		logger.Logf(level, "%s (attempt %d of %d)", description, attempt, maxAttempts)

		err := action(ctx)
		if err == nil {
			return nil
		}

		var fatalErr FatalError
		if errors.As(err, &fatalErr) {
			return err
		}

		if ctx.Err() != nil {
			logger.Debugf("%s returned an error: %s.", description, err.Error())

			return errors.New(ctx.Err())
		}

		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := backoffDelay(baseDelay, attempt)
		logger.Warnf("%s returned an error: %s. Sleeping for %s before attempt %d of %d.", description, err.Error(), delay, attempt+1, maxAttempts)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.New(ctx.Err())
		}
	}

	return errors.WithStackTrace(MaxAttemptsExceeded{
		Description: description,
		MaxAttempts: maxAttempts,
		LastErr:     lastErr,
	})
}

// backoffDelay returns baseDelay doubled per completed attempt, capped at
// maxBackoff, with random jitter of up to 50% in either direction. The result
// stays within [delay/2, 3*delay/2].
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	if baseDelay <= 0 {
		return 0
	}

	delay := baseDelay << (attempt - 1)
	if delay > maxBackoff || delay <= 0 {
		delay = maxBackoff
	}

	return delay/2 + time.Duration(rand.Int63n(int64(delay)+1))
}

// MaxAttemptsExceeded reports that every retry attempt failed.
type MaxAttemptsExceeded struct {
	LastErr     error
	Description string
	MaxAttempts int
}

func (err MaxAttemptsExceeded) Error() string {
	if err.LastErr != nil {
		return fmt.Sprintf("'%s' unsuccessful after %d attempts, last error: %s", err.Description, err.MaxAttempts, err.LastErr)
	}

	return fmt.Sprintf("'%s' unsuccessful after %d attempts", err.Description, err.MaxAttempts)
}

func (err MaxAttemptsExceeded) Unwrap() error {
	return err.LastErr
}

// FatalError marks an error that must not be retried.
type FatalError struct {
	Underlying error
}

func (err FatalError) Error() string {
	return err.Underlying.Error()
}

func (err FatalError) Unwrap() error {
	return err.Underlying
}
