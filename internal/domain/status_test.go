package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertTransitionTable(t *testing.T) {
	allowed := map[[2]Status]bool{
		{STATUS_PENDING_PAYMENT, STATUS_PAYMENT_DETECTED}:        true,
		{STATUS_PENDING_PAYMENT, STATUS_EXPIRED}:                 true,
		{STATUS_PAYMENT_DETECTED, STATUS_PAYMENT_CONFIRMED}:      true,
		{STATUS_PAYMENT_DETECTED, STATUS_EXPIRED}:                true,
		{STATUS_PAYMENT_DETECTED, STATUS_EXTRA_PAYMENT}:          true,
		{STATUS_PAYMENT_CONFIRMED, STATUS_DISPATCH_ENQUEUED}:     true,
		{STATUS_PAYMENT_CONFIRMED, STATUS_EXTRA_PAYMENT}:         true,
		{STATUS_DISPATCH_ENQUEUED, STATUS_DISPATCH_SENT}:         true,
		{STATUS_DISPATCH_ENQUEUED, STATUS_FULFILL_FAILED_MANUAL}: true,
		{STATUS_DISPATCH_SENT, STATUS_FULFILLED}:                 true,
		{STATUS_DISPATCH_SENT, STATUS_FULFILL_FAILED_MANUAL}:     true,
		{STATUS_FULFILL_FAILED_MANUAL, STATUS_FULFILLED}:         true,
		{STATUS_FULFILL_FAILED_MANUAL, STATUS_DISPATCH_ENQUEUED}: true,
		{STATUS_EXPIRED, STATUS_EXTRA_PAYMENT}:                   true,
	}

	for current := range Statuses {
		for next := range Statuses {
			cur, nxt := Status(current), Status(next)
			err := AssertTransition(cur, nxt)
			if allowed[[2]Status{cur, nxt}] {
				assert.NoError(t, err, "%s -> %s must be allowed", cur.ToString(), nxt.ToString())
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s must be rejected", cur.ToString(), nxt.ToString())
			}
		}
	}
}

func TestAssertTransitionSkipRejected(t *testing.T) {
	// skipping intermediate transitions is never allowed even when the
	// end state is "obvious"
	err := AssertTransition(STATUS_PENDING_PAYMENT, STATUS_FULFILLED)
	require.ErrorIs(t, err, ErrInvalidTransition)

	err = AssertTransition(STATUS_PAYMENT_CONFIRMED, STATUS_DISPATCH_SENT)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, STATUS_FULFILLED.IsTerminal())
	assert.True(t, STATUS_EXTRA_PAYMENT.IsTerminal())
	assert.False(t, STATUS_FULFILL_FAILED_MANUAL.IsTerminal()) // admin can recover it
	assert.False(t, STATUS_EXPIRED.IsTerminal()) // EXPIRED can still become EXTRA_PAYMENT
	assert.False(t, STATUS_PENDING_PAYMENT.IsTerminal())
}

func TestWatchedStatuses(t *testing.T) {
	assert.True(t, STATUS_EXPIRED.IsWatched())
	assert.True(t, STATUS_EXTRA_PAYMENT.IsWatched())
	assert.False(t, STATUS_FULFILLED.IsWatched())
	assert.False(t, STATUS_DISPATCH_SENT.IsWatched())
}

func TestStrToStatus(t *testing.T) {
	s, ok := StrToStatus("PAYMENT_CONFIRMED")
	require.True(t, ok)
	assert.Equal(t, STATUS_PAYMENT_CONFIRMED, s)

	_, ok = StrToStatus("NOT_A_STATUS")
	assert.False(t, ok)
}
