package domain

type ShipmentStatus uint8

const (
	SHIPMENT_LOCKED ShipmentStatus = iota
	SHIPMENT_SENT
	SHIPMENT_SENT_MANUAL
	SHIPMENT_CONFIRMED
	SHIPMENT_FAILED_MANUAL
)

var ShipmentStatuses = [...]string{"LOCKED", "SENT", "SENT_MANUAL", "CONFIRMED", "FAILED_MANUAL"}

func (s ShipmentStatus) ToString() string {
	return ShipmentStatuses[s]
}

// dispatcher identifiers recorded on shipments
const (
	DISPATCHER_EVM    = "dispatcher-evm"
	DISPATCHER_SOLANA = "dispatcher-solana"
	DISPATCHER_TON    = "dispatcher-ton"
	DISPATCHER_SUI    = "dispatcher-sui"
	DISPATCHER_MANUAL = "manual-admin"
)

// Shipments is the payout record, at most one per order. Creating the
// row with status LOCKED is the dispatch claim; a non-null TxHash is
// the proof that a payout was submitted.
type Shipments struct {
	Model
	ID         uint           `gorm:"primaryKey"`
	OrderID    string         `gorm:"size:36;unique;not null"`
	Dispatcher string         `gorm:"size:32;not null"`
	TxHash     string         `gorm:"type:text"`
	Status     ShipmentStatus `gorm:"type:int8"`
}
