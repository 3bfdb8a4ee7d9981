package repository

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type EventsRepo struct {
}

func InitEventsRepo() *EventsRepo {
	return &EventsRepo{}
}

func (r *EventsRepo) Append(tx *gorm.DB, orderId string, eventType string, payload any) error {
	body := "{}"
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		body = string(data)
	}

	return tx.Create(&domain.OrderEvents{
		OrderID:   orderId,
		EventType: eventType,
		Payload:   body,
	}).Error
}

func (r *EventsRepo) ListByOrder(tx *gorm.DB, orderId string) ([]domain.OrderEvents, error) {
	var events []domain.OrderEvents
	return events, tx.Where(&domain.OrderEvents{OrderID: orderId}).
		Order("id ASC").
		Find(&events).Error
}
