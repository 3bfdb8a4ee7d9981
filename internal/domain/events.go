package domain

import "time"

// event types, one per state-affecting action
const (
	EVENT_ORDER_CREATED          = "ORDER_CREATED"
	EVENT_PAYMENT_DETECTED       = "PAYMENT_DETECTED"
	EVENT_PAYMENT_CONFIRMED      = "PAYMENT_CONFIRMED"
	EVENT_EXTRA_PAYMENT          = "EXTRA_PAYMENT"
	EVENT_LATE_PAYMENT           = "LATE_PAYMENT"
	EVENT_ORDER_EXPIRED          = "ORDER_EXPIRED"
	EVENT_DISPATCH_ENQUEUED      = "DISPATCH_ENQUEUED"
	EVENT_DISPATCH_SENT          = "DISPATCH_SENT"
	EVENT_FULFILLED              = "FULFILLED"
	EVENT_DISPATCH_FAILED_MANUAL = "DISPATCH_FAILED_MANUAL"
	EVENT_MANUAL_FULFILL         = "MANUAL_FULFILL"
	EVENT_MANUAL_RETRY_DISPATCH  = "MANUAL_RETRY_DISPATCH"
	EVENT_SUPPORT_TICKET_CREATED = "SUPPORT_TICKET_CREATED"
	EVENT_ADDRESS_RELEASED       = "ADDRESS_RELEASED"
)

// OrderEvents is the append-only audit trail. Rows are never mutated
// or deleted; every state-affecting action appends exactly one event
// in the same transaction as its mutation.
type OrderEvents struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"size:36;not null;index"`
	EventType string `gorm:"size:48;not null"`
	Payload   string `gorm:"type:text"` // json
	CreatedAt time.Time
}

// event payloads

type PayloadOrderCreated struct {
	IP       string `json:"ip"`
	Quantity uint   `json:"quantity"`
}

type PayloadPayment struct {
	TxHash        string `json:"tx_hash"`
	Chain         string `json:"chain"`
	Confirmations uint   `json:"confirmations"`
}

type PayloadExtraPayment struct {
	TxHash    string `json:"tx_hash"`
	Chain     string `json:"chain"`
	ToAddress string `json:"to_address"`
	RawAmount string `json:"raw_amount"`
}

type PayloadDispatch struct {
	TxHash     string `json:"tx_hash,omitempty"`
	Dispatcher string `json:"dispatcher,omitempty"`
	Reason     string `json:"reason,omitempty"`
}
