package domain

import "time"

type Orders struct {
	Model
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"unique;not null"`

	ProductID string `gorm:"size:64;not null;index"`
	Quantity  uint   `gorm:"not null"`
	Status    Status `gorm:"type:int8;index"`

	// denormalized from the product so dispatchers can list their orders
	// without a join
	FulfillmentKind FulfillmentKind `gorm:"type:int8;index"`

	FulfillmentAddress string `gorm:"type:text;not null"`
	DeliveryNetwork    string `gorm:"type:text"`
	Cluster            string `gorm:"type:text"` // devnet/testnet, SOLANA kind only
	Contact            string `gorm:"type:text"`

	ExpiresAt  time.Time
	FailReason string `gorm:"type:text"`

	// monotonic flags, set true once and never cleared
	LatePaymentFlag  bool
	ExtraPaymentFlag bool
}

func (o *Orders) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

type Products struct {
	Model
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"unique;size:64;not null"`
	Title     string `gorm:"type:text"`

	PriceUsd       string `gorm:"type:text;not null"` // fixed-point decimal string
	MinPurchaseQty uint   `gorm:"not null"`
	QuantityStep   uint   `gorm:"not null"`
	Enabled        bool

	FulfillmentKind FulfillmentKind `gorm:"type:int8"`
	RequiresCluster bool
}
