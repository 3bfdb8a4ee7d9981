package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const MaxTokenDecimals = 36

// ToRawAmount converts a fixed-point decimal display amount into the
// token's smallest unit: floor(display * 10^decimals). Integer string
// out, no floats anywhere.
func ToRawAmount(display string, decimals uint) (string, error) {
	if decimals > MaxTokenDecimals {
		return "", fmt.Errorf("%w: decimals %d out of range", ErrInvalidAmount, decimals)
	}

	d, err := decimal.NewFromString(display)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAmount, display)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, display)
	}

	raw := d.Shift(int32(decimals)).Floor()
	return raw.BigInt().String(), nil
}

// ExpectedRawAmount is the exact smallest-unit amount the buyer must
// transfer: floor(priceUsd * 10^decimals) * quantity.
func ExpectedRawAmount(priceUsd string, decimals uint, quantity uint) (string, error) {
	if quantity == 0 {
		return "", ErrInvalidQuantity
	}

	unit, err := ToRawAmount(priceUsd, decimals)
	if err != nil {
		return "", err
	}

	unitInt, ok := new(big.Int).SetString(unit, 10)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidAmount, unit)
	}

	total := new(big.Int).Mul(unitInt, new(big.Int).SetUint64(uint64(quantity)))
	return total.String(), nil
}
