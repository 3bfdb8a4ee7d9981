package tron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHexToBase58(t *testing.T) {
	// mainnet USDT contract
	const usdtHex = "41a614f803b6fd780986a42c78ec9c7f77e6ded13c"
	const usdtBase58 = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

	for _, in := range []string{usdtHex, "0x" + usdtHex, "a614f803b6fd780986a42c78ec9c7f77e6ded13c"} {
		got, err := HexToBase58(in)
		require.NoError(t, err, in)
		require.Equal(t, usdtBase58, got)
	}
}

func TestHexToBase58Rejects(t *testing.T) {
	for _, in := range []string{"", "41", "zz14f803b6fd780986a42c78ec9c7f77e6ded13c41", "4100"} {
		_, err := HexToBase58(in)
		require.Error(t, err, in)
	}
}
