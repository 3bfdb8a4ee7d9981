package domain

import "time"

// Model mirrors gorm.Model minus soft deletes (rows are never deleted)
type Model struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// payment rails

type Chain uint8

const (
	CHAIN_NONE Chain = iota // only for init
	CHAIN_BSC
	CHAIN_BASE
	CHAIN_TRON
	CHAIN_SOL
)

var ChainNames = [...]string{"none", "BSC", "BASE", "TRON", "SOL"}

func (c Chain) ToString() string {
	return ChainNames[c]
}

func (c Chain) IsNone() bool {
	return c == CHAIN_NONE
}

// EVM chains keep contract addresses and deposit addresses lowercased
func (c Chain) IsEvm() bool {
	return c == CHAIN_BSC || c == CHAIN_BASE
}

func StrToChain(s string) Chain {
	for i, chainName := range ChainNames {
		if s == chainName {
			return Chain(i)
		}
	}
	return CHAIN_NONE
}

// fulfillment rails (what the buyer receives)

type FulfillmentKind uint8

const (
	KIND_NONE FulfillmentKind = iota
	KIND_EVM
	KIND_SOLANA
	KIND_TON
	KIND_SUI
)

var FulfillmentKinds = [...]string{"none", "EVM", "SOLANA", "TON", "SUI_NATIVE"}

func (k FulfillmentKind) ToString() string {
	return FulfillmentKinds[k]
}

func StrToFulfillmentKind(s string) FulfillmentKind {
	for i, kindName := range FulfillmentKinds {
		if s == kindName {
			return FulfillmentKind(i)
		}
	}
	return KIND_NONE
}

// solana clusters orders can be fulfilled on
const (
	CLUSTER_DEVNET  = "devnet"
	CLUSTER_TESTNET = "testnet"
)

// cursor units, one per chain family so numeric positions are never ambiguous
const (
	CURSOR_UNIT_BLOCK = "block"
	CURSOR_UNIT_SLOT  = "slot"
	CURSOR_UNIT_MS    = "ms"
)
