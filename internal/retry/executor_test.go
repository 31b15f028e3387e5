package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct{ transient error }

func (c stubClassifier) IsTransient(err error) bool { return errors.Is(err, c.transient) }

var errFlaky = errors.New("flaky")

func fastBackoff(attempts int) *ExponentialBackoff {
	return NewExponentialBackoff(attempts, WithInitialDelay(time.Millisecond), WithJitter(0))
}

func TestExecutor_SucceedsFirstTime(t *testing.T) {
	calls := 0
	err := NewExecutor(stubClassifier{errFlaky}, fastBackoff(3)).Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	var retries []int
	executor := NewExecutor(stubClassifier{errFlaky}, fastBackoff(3)).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		retries = append(retries, attempt)
	})

	err := executor.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{0, 1}, retries)
}

func TestExecutor_StopsOnFatalError(t *testing.T) {
	fatal := errors.New("bad password")
	calls := 0
	err := NewExecutor(stubClassifier{errFlaky}, fastBackoff(3)).Execute(context.Background(), func(context.Context) error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := NewExecutor(stubClassifier{errFlaky}, fastBackoff(2)).Execute(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestExecutor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	strategy := NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithMaxDelay(time.Hour), WithJitter(0))
	executor := NewExecutor(stubClassifier{errFlaky}, strategy).WithOnRetry(func(int, error, time.Duration) {
		cancel()
	})

	err := executor.Execute(ctx, func(context.Context) error { return errFlaky })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, fastBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(stubClassifier{}, nil) })
}
