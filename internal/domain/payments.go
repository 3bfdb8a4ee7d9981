package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentAddresses binds one pool address to an order for one (chain, token).
// Immutable after creation.
type PaymentAddresses struct {
	Model
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"size:36;not null;index"`

	Chain         Chain  `gorm:"type:int8;index"`
	TokenSymbol   string `gorm:"size:16;not null"`
	TokenContract string `gorm:"type:text;not null;index"`
	Address       string `gorm:"type:text;not null;index"`

	AmountDisplay     decimal.Decimal `gorm:"type:numeric"`
	ExpectedRawAmount string          `gorm:"type:text;not null"` // smallest-unit integer string
}

// AddressPool entries are operator-provisioned deposit addresses,
// borrowed by one order at a time.
type AddressPool struct {
	Model
	ID            uint   `gorm:"primaryKey"`
	Chain         Chain  `gorm:"type:int8;index"`
	TokenSymbol   string `gorm:"size:16;not null"`
	TokenContract string `gorm:"type:text"`
	Address       string `gorm:"type:text;unique;not null"`
	InUse         bool   `gorm:"index"`
}

// Payments is one observed on-chain transfer. TxHash is the global
// idempotency key: watchers re-scanning overlapping ranges update the
// row in place instead of inserting twice.
type Payments struct {
	Model
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"size:36;not null;index"`

	Chain         Chain  `gorm:"type:int8;index"`
	TxHash        string `gorm:"type:text;unique;not null"`
	BlockNumber   uint64 // block for EVM/TRON, slot for Solana
	Confirmations uint   // monotonically non-decreasing
	TokenContract string `gorm:"type:text"`
	ToAddress     string `gorm:"type:text"`
	RawAmount     string `gorm:"type:text"`
	ConfirmedAt   *time.Time
}

// WatcherCursors is the per (chain, scan key) high-water mark. Unit is
// explicit so block heights, slots and millisecond timestamps are never
// mixed up in one numeric column.
type WatcherCursors struct {
	Model
	ID       uint   `gorm:"primaryKey"`
	Chain    Chain  `gorm:"type:int8;uniqueIndex:idx_cursor_scan_key"`
	ScanKey  string `gorm:"type:text;uniqueIndex:idx_cursor_scan_key"`
	Position uint64
	Unit     string `gorm:"size:8"` // CURSOR_UNIT_*
}
