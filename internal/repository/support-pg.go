package repository

import (
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type SupportRepo struct {
}

func InitSupportRepo() *SupportRepo {
	return &SupportRepo{}
}

func (r *SupportRepo) Create(tx *gorm.DB, ticket *domain.SupportTickets) error {
	return tx.Create(ticket).Error
}

func (r *SupportRepo) Update(tx *gorm.DB, ticket *domain.SupportTickets) error {
	return tx.Save(ticket).Error
}

func (r *SupportRepo) FindByTicketID(tx *gorm.DB, ticketId string) (*domain.SupportTickets, error) {
	var ticket domain.SupportTickets
	return &ticket, tx.Where(&domain.SupportTickets{TicketID: ticketId}).First(&ticket).Error
}

func (r *SupportRepo) ListOpen(tx *gorm.DB) ([]domain.SupportTickets, error) {
	var tickets []domain.SupportTickets
	return tickets, tx.Where("status = ?", domain.TICKET_OPEN).
		Order("created_at ASC").
		Find(&tickets).Error
}
