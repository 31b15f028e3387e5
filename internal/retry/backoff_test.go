package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_NextDelay_WithoutJitter(t *testing.T) {
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0),
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, strategy.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_CapsAtMaxDelay(t *testing.T) {
	strategy := NewExponentialBackoff(100,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(time.Minute),
		WithJitter(0),
	)

	for attempt := 0; attempt <= 100; attempt++ {
		delay := strategy.NextDelay(attempt)
		assert.LessOrEqual(t, delay, time.Minute)
		if attempt > 20 {
			assert.Equal(t, time.Minute, delay)
		}
	}
}

func TestExponentialBackoff_Jitter(t *testing.T) {
	for _, tt := range []struct {
		random float64
		want   time.Duration
	}{
		{0.0, 90 * time.Millisecond},
		{0.5, 100 * time.Millisecond},
		{1.0, 110 * time.Millisecond},
	} {
		r := tt.random
		strategy := NewExponentialBackoff(3,
			WithInitialDelay(100*time.Millisecond),
			WithJitter(0.1),
			WithRandom(func() float64 { return r }),
		)
		assert.Equal(t, tt.want, strategy.NextDelay(0), "random=%v", r)
	}
}

func TestExponentialBackoff_Defaults(t *testing.T) {
	strategy := NewExponentialBackoff(3, WithJitter(0))
	assert.Equal(t, 3, strategy.MaxAttempts())
	assert.Equal(t, 100*time.Millisecond, strategy.NextDelay(0))
	assert.Equal(t, 30*time.Second, strategy.NextDelay(30))
}
