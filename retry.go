package hueble

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// retryPolicy bounds one transport operation class: how many attempts, how
// long each attempt may take, and how long to pause between attempts.
type retryPolicy struct {
	attempts int
	timeout  time.Duration
	delay    time.Duration
}

func (c *Config) readPolicy() retryPolicy {
	return retryPolicy{attempts: c.ReadAttempts, timeout: c.ReadTimeout, delay: c.RetryDelay}
}

func (c *Config) writePolicy() retryPolicy {
	return retryPolicy{attempts: c.WriteAttempts, timeout: c.WriteTimeout, delay: c.RetryDelay}
}

func (c *Config) connectPolicy() retryPolicy {
	return retryPolicy{attempts: c.ConnectAttempts, timeout: c.ConnectTimeout, delay: c.RetryDelay}
}

// runAttempts executes op under the policy. A timed-out attempt counts as a
// failed attempt, not a fatal error. Failures that indicate the link itself
// dropped are returned immediately so the session can run its reconnection
// policy; there is no point retrying on a dead link. The attempt count made
// and the last failure are returned for the caller to wrap into its
// operation-class error.
func runAttempts[T any](ctx context.Context, logger *logrus.Entry, name string, p retryPolicy, op func(context.Context) (T, error)) (T, int, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		result, err := op(attemptCtx)
		cancel()

		if err == nil {
			return result, attempt, nil
		}

		err = NormalizeError(err)
		lastErr = err

		if isLinkDown(err) {
			logger.WithFields(logrus.Fields{
				"op":      name,
				"attempt": attempt,
				"error":   err,
			}).Debug("Link dropped during operation, aborting retries")
			return zero, attempt, err
		}

		logger.WithFields(logrus.Fields{
			"op":           name,
			"attempt":      attempt,
			"max_attempts": p.attempts,
			"error":        err,
		}).Debug("Operation attempt failed")

		if attempt < p.attempts && p.delay > 0 {
			select {
			case <-ctx.Done():
				return zero, attempt, ctx.Err()
			case <-time.After(p.delay):
			}
		}
	}

	return zero, p.attempts, lastErr
}
