package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRawAmount(t *testing.T) {
	cases := []struct {
		display  string
		decimals uint
		want     string
	}{
		{"0.50", 6, "500000"},
		{"1", 0, "1"},
		{"0.5", 2, "50"},
		{"1.23", 6, "1230000"},
		{"0.000001", 6, "1"},
		{"0.0000001", 6, "0"}, // sub-unit precision floors away
		{"10", 18, "10000000000000000000"},
	}

	for _, c := range cases {
		got, err := ToRawAmount(c.display, c.decimals)
		require.NoError(t, err, c.display)
		assert.Equal(t, c.want, got, "%s @ %d decimals", c.display, c.decimals)
	}
}

func TestToRawAmountRejects(t *testing.T) {
	_, err := ToRawAmount("abc", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ToRawAmount("-1", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ToRawAmount("1.0", 37)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestExpectedRawAmount(t *testing.T) {
	// unit price "0.50", decimals 6, quantity 2 => "1000000"
	got, err := ExpectedRawAmount("0.50", 6, 2)
	require.NoError(t, err)
	assert.Equal(t, "1000000", got)

	got, err = ExpectedRawAmount("0.1", 18, 3)
	require.NoError(t, err)
	assert.Equal(t, "300000000000000000", got)

	_, err = ExpectedRawAmount("0.50", 6, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
