package domain

const (
	TICKET_OPEN   = "open"
	TICKET_CLOSED = "closed"
)

type SupportTickets struct {
	Model
	ID       uint   `gorm:"primaryKey"`
	TicketID string `gorm:"unique;size:36;not null"`
	OrderID  string `gorm:"size:36;index"`

	ContactType  string `gorm:"size:16"` // email/telegram
	ContactValue string `gorm:"type:text"`
	Message      string `gorm:"type:text"`
	Status       string `gorm:"size:8"` // open/closed
}
