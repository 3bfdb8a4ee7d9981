package sol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationDepth(t *testing.T) {
	// a transfer at the head slot counts as one confirmation
	assert.Equal(t, uint(1), confirmationDepth(100, 100))
	assert.Equal(t, uint(12), confirmationDepth(111, 100))

	// head behind the recorded slot (rpc lag) never underflows
	assert.Equal(t, uint(0), confirmationDepth(99, 100))
}

func TestConfirmationDepthReachesThreshold(t *testing.T) {
	const threshold = 12

	// slot 100 observed, head must reach 111 for depth 12
	assert.Less(t, confirmationDepth(110, 100), uint(threshold))
	assert.GreaterOrEqual(t, confirmationDepth(111, 100), uint(threshold))
}
