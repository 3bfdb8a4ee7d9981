package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
	tonaddr "github.com/xssnick/tonutils-go/address"
)

var (
	evmAddrRegex     = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	solAddrRegex     = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	tonFriendlyRegex = regexp.MustCompile(`^(EQ|UQ)[A-Za-z0-9_-]{46}$`)
	suiAddrRegex     = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
)

// ValidateFulfillmentAddress checks the buyer-supplied payout address
// against the product's fulfillment kind. Called once at order creation.
func ValidateFulfillmentAddress(kind FulfillmentKind, value string) error {
	switch kind {
	case KIND_EVM:
		if !evmAddrRegex.MatchString(value) {
			return fmt.Errorf("%w: expected 0x-prefixed 20-byte hex", ErrInvalidAddress)
		}
	case KIND_SOLANA:
		if !solAddrRegex.MatchString(value) {
			return fmt.Errorf("%w: expected base58 Solana address", ErrInvalidAddress)
		}
		if _, err := solana.PublicKeyFromBase58(value); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAddress, value)
		}
	case KIND_TON:
		if !tonFriendlyRegex.MatchString(value) {
			return fmt.Errorf("%w: expected TON friendly form (EQ../UQ..)", ErrInvalidAddress)
		}
		if _, err := tonaddr.ParseAddr(value); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAddress, value)
		}
	case KIND_SUI:
		if !suiAddrRegex.MatchString(value) {
			return fmt.Errorf("%w: expected 0x-prefixed 32-byte hex Sui address", ErrInvalidAddress)
		}
	default:
		return fmt.Errorf("%w: unknown fulfillment kind", ErrInvalidAddress)
	}
	return nil
}

// CanonicalContract normalizes a token contract per chain: EVM contracts
// compare lowercased, Solana mints and TRON base58 contracts keep case.
func CanonicalContract(chain Chain, contract string) string {
	contract = strings.TrimSpace(contract)
	if chain.IsEvm() {
		return strings.ToLower(contract)
	}
	return contract
}

// CanonicalAddress applies the same per-chain normalization to deposit
// addresses before they are stored or matched.
func CanonicalAddress(chain Chain, address string) string {
	address = strings.TrimSpace(address)
	if chain.IsEvm() {
		return strings.ToLower(address)
	}
	return address
}
