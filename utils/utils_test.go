package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ticket code tests

func TestGenerateTicketCode_Format(t *testing.T) {
	code, err := GenerateTicketCode("ED")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^ED-\d{4}-\d{5}$`)
	assert.True(t, pattern.MatchString(code), "unexpected code format: %s", code)

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)

	year, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	assert.Equal(t, time.Now().Year(), year)

	n, err := strconv.Atoi(parts[2])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 10000)
	assert.LessOrEqual(t, n, 99999)
}

func TestGenerateTicketCode_CustomPrefix(t *testing.T) {
	code, err := GenerateTicketCode("TTD")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "TTD-"))
}

func TestGenerateTicketCode_Varies(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateTicketCode("ED")
		require.NoError(t, err)
		seen[code] = true
	}
	// 50 draws from a 90000-value space almost never collide down to one value.
	assert.Greater(t, len(seen), 1)
}

// Circuit breaker tests

func TestCircuitBreaker_ClosedOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")

	err := cb.Do(func() error { return nil })

	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.counts.Requests)
	assert.Equal(t, uint32(1), cb.counts.TotalSuccesses)
}

func TestCircuitBreaker_PassesThroughError(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("publish failed")

	err := cb.Do(func() error { return boom })

	assert.Equal(t, boom, err)
	assert.Equal(t, uint32(1), cb.counts.TotalFailures)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterFailureRatio(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.minRequests = 5

	for i := 0; i < 5; i++ {
		_ = cb.Do(func() error { return errors.New("failure") })
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Do(func() error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.minRequests = 3
	cb.cooldown = 10 * time.Millisecond

	for i := 0; i < 3; i++ {
		_ = cb.Do(func() error { return errors.New("failure") })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	err := cb.Do(func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenReopensOnFailure(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.minRequests = 3
	cb.cooldown = 10 * time.Millisecond

	for i := 0; i < 3; i++ {
		_ = cb.Do(func() error { return errors.New("failure") })
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, cb.State())

	_ = cb.Do(func() error { return errors.New("still failing") })
	assert.Equal(t, StateOpen, cb.State())
}
