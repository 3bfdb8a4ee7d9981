package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

type SupportService struct {
	db      *gorm.DB
	repo    repository.Support
	orders  repository.Orders
	events  repository.Events
	n       *nats.NatsInfra
	l       logger.Logger
}

func NewSupportService(db *gorm.DB, repo repository.Support, orders repository.Orders, events repository.Events, n *nats.NatsInfra, l logger.Logger) *SupportService {
	return &SupportService{db: db, repo: repo, orders: orders, events: events, n: n, l: l}
}

func (s *SupportService) CreateTicket(req *domain.RequestCreateTicket) (*domain.ResponseTicketInfo, error) {
	// tickets may reference an order, but it has to exist
	if req.OrderID != "" {
		if _, err := s.orders.FindByOrderID(s.db, req.OrderID); err != nil {
			if postgres.IsNotFound(err) {
				return nil, domain.ErrOrderNotFound
			}
			return nil, domain.ErrInternalServerError
		}
	}

	ticket := &domain.SupportTickets{
		TicketID:     uuid.NewString(),
		OrderID:      req.OrderID,
		ContactType:  req.ContactType,
		ContactValue: req.ContactValue,
		Message:      req.Message,
		Status:       domain.TICKET_OPEN,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(tx, ticket); err != nil {
			return err
		}
		if ticket.OrderID != "" {
			return s.events.Append(tx, ticket.OrderID, domain.EVENT_SUPPORT_TICKET_CREATED, map[string]string{"ticket_id": ticket.TicketID})
		}
		return nil
	})
	if err != nil {
		s.l.TemplOrderErr("create support ticket: "+err.Error(), logger.GenErrorId(), req.OrderID, logger.NA, logger.NA, logger.NA)
		return nil, domain.ErrInternalServerError
	}

	s.n.PublishJson(nats.SubjSupportTicket, ticket) //nolint:errcheck // best effort

	return ticketInfo(ticket), nil
}

func (s *SupportService) CloseTicket(ticketId string) (*domain.ResponseTicketInfo, error) {
	ticket, err := s.repo.FindByTicketID(s.db, ticketId)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, domain.ErrInternalServerError
	}

	ticket.Status = domain.TICKET_CLOSED
	if err := s.repo.Update(s.db, ticket); err != nil {
		return nil, domain.ErrInternalServerError
	}

	return ticketInfo(ticket), nil
}

func (s *SupportService) ListOpen() ([]domain.ResponseTicketInfo, error) {
	tickets, err := s.repo.ListOpen(s.db)
	if err != nil {
		return nil, domain.ErrInternalServerError
	}

	out := make([]domain.ResponseTicketInfo, 0, len(tickets))
	for i := range tickets {
		out = append(out, *ticketInfo(&tickets[i]))
	}
	return out, nil
}

func ticketInfo(t *domain.SupportTickets) *domain.ResponseTicketInfo {
	return &domain.ResponseTicketInfo{
		TicketID:  t.TicketID,
		OrderID:   t.OrderID,
		Status:    t.Status,
		CreatedAt: t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
