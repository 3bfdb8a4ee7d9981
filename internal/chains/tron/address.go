package tron

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// HexToBase58 converts a TRON hex address (with or without the 0x /
// 41 prefixes) to the base58check form used everywhere else.
func HexToBase58(hexAddr string) (string, error) {
	s := strings.TrimPrefix(strings.ToLower(hexAddr), "0x")
	if len(s) == 40 {
		s = "41" + s
	}
	if len(s) != 42 || !strings.HasPrefix(s, "41") {
		return "", fmt.Errorf("bad tron hex address %q", hexAddr)
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("bad tron hex address %q: %w", hexAddr, err)
	}

	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])

	return base58.Encode(append(raw, second[:4]...)), nil
}
