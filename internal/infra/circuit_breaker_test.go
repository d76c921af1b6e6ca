package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSMTP = errors.New("smtp unreachable")

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Hour)

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errSMTP })
		require.ErrorIs(t, err, errSMTP)
	}
	assert.Equal(t, BreakerOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called, "open breaker must not invoke the call")
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Hour)

	require.Error(t, cb.Execute(func() error { return errSMTP }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errSMTP }))

	// One failure after the reset, so the breaker stays closed.
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreakerClosesAfterSuccessfulProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errSMTP }))
	assert.Equal(t, BreakerOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreakerReopensOnFailedProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errSMTP }))
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(func() error { return errSMTP }), errSMTP)
	assert.Equal(t, BreakerOpen, cb.State())

	called := false
	assert.ErrorIs(t, cb.Execute(func() error { called = true; return nil }), ErrBreakerOpen)
	assert.False(t, called)
}
