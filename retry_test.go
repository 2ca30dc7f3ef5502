package hueble

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("test", true)
}

func testPolicy(attempts int) retryPolicy {
	return retryPolicy{attempts: attempts, timeout: time.Second, delay: time.Millisecond}
}

func TestRunAttemptsSucceedsWithinBudget(t *testing.T) {
	calls := 0
	result, attempts, err := runAttempts(context.Background(), testEntry(), "op", testPolicy(3),
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRunAttemptsExhaustsBudget(t *testing.T) {
	transient := errors.New("transient")
	_, attempts, err := runAttempts(context.Background(), testEntry(), "op", testPolicy(3),
		func(context.Context) (struct{}, error) {
			return struct{}{}, transient
		})

	require.ErrorIs(t, err, transient)
	assert.Equal(t, 3, attempts)
}

func TestRunAttemptsAbortsOnLinkDown(t *testing.T) {
	calls := 0
	_, attempts, err := runAttempts(context.Background(), testEntry(), "op", testPolicy(5),
		func(context.Context) (struct{}, error) {
			calls++
			return struct{}{}, ErrNotConnected
		})

	require.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, 1, attempts, "a dead link is not worth retrying")
	assert.Equal(t, 1, calls)
}

func TestRunAttemptsNormalizesLinkErrors(t *testing.T) {
	calls := 0
	_, _, err := runAttempts(context.Background(), testEntry(), "op", testPolicy(5),
		func(context.Context) (struct{}, error) {
			calls++
			return struct{}{}, errors.New("ATT request failed: device disconnected")
		})

	require.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, 1, calls)
}

func TestRunAttemptsHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, attempts, err := runAttempts(ctx, testEntry(), "op", testPolicy(3),
		func(context.Context) (struct{}, error) {
			calls++
			return struct{}{}, errors.New("transient")
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
	assert.Equal(t, 0, calls)
}

func TestRunAttemptsBoundsAttemptDuration(t *testing.T) {
	p := retryPolicy{attempts: 2, timeout: 5 * time.Millisecond, delay: time.Millisecond}
	_, attempts, err := runAttempts(context.Background(), testEntry(), "op", p,
		func(ctx context.Context) (struct{}, error) {
			<-ctx.Done()
			return struct{}{}, ctx.Err()
		})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, attempts, "a timed-out attempt counts as a failed attempt")
}
