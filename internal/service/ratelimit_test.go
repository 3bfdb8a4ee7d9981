package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitWindow(t *testing.T) {
	s := NewRateLimitService(2, time.Hour)

	assert.True(t, s.Allow("1.2.3.4"))
	assert.True(t, s.Allow("1.2.3.4"))
	assert.False(t, s.Allow("1.2.3.4"))

	// independent keys
	assert.True(t, s.Allow("5.6.7.8"))
}

func TestRateLimitWindowReset(t *testing.T) {
	s := NewRateLimitService(1, 10*time.Millisecond)

	assert.True(t, s.Allow("1.2.3.4"))
	assert.False(t, s.Allow("1.2.3.4"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, s.Allow("1.2.3.4"))
}

func TestRateLimitSweep(t *testing.T) {
	s := NewRateLimitService(1, 10*time.Millisecond)
	s.Allow("1.2.3.4")
	s.Allow("5.6.7.8")

	time.Sleep(15 * time.Millisecond)
	s.Sweep()

	assert.Empty(t, s.counters)
}
