package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFulfillmentAddress(t *testing.T) {
	ok := []struct {
		kind FulfillmentKind
		addr string
	}{
		{KIND_EVM, "0x52908400098527886E0F7030069857D2E4169EE7"},
		{KIND_SOLANA, "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"},
		{KIND_TON, "EQDrjaLahLkMB-hMCmkzOyBuHJ139ZUYmPHu6RRBKnbdLIYI"},
		{KIND_SUI, "0x0000000000000000000000000000000000000000000000000000000000000002"},
	}
	for _, c := range ok {
		assert.NoError(t, ValidateFulfillmentAddress(c.kind, c.addr), "%s %s", c.kind.ToString(), c.addr)
	}

	bad := []struct {
		kind FulfillmentKind
		addr string
	}{
		{KIND_EVM, "0x12345"},
		{KIND_EVM, "52908400098527886E0F7030069857D2E4169EE7"},
		{KIND_SOLANA, "0x52908400098527886E0F7030069857D2E4169EE7"},
		{KIND_SOLANA, "IIII"}, // base58 excludes I
		{KIND_TON, "XQDrjaLahLkMB-hMCmkzOyBuHJ139ZUYmPHu6RRBKnbdLIYI"},
		{KIND_SUI, "0x02"},
		{KIND_SUI, "0x2::sui::SUI"},
		{KIND_NONE, "anything"},
	}
	for _, c := range bad {
		assert.ErrorIs(t, ValidateFulfillmentAddress(c.kind, c.addr), ErrInvalidAddress, "%s %s", c.kind.ToString(), c.addr)
	}
}

func TestCanonicalContract(t *testing.T) {
	assert.Equal(t, "0xabcdef", CanonicalContract(CHAIN_BSC, "0xABCDEF"))
	assert.Equal(t, "0xabcdef", CanonicalContract(CHAIN_BASE, " 0xABCdef "))
	// base58 keeps case
	assert.Equal(t, "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", CanonicalContract(CHAIN_SOL, "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"))
	assert.Equal(t, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", CanonicalContract(CHAIN_TRON, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"))
}
