package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

// PaymentsService owns the payment transition: every observed transfer
// and every confirmation update funnels through here, inside one
// serializable transaction guarded by a row lock on the order.
type PaymentsService struct {
	db    *gorm.DB
	repos *repository.Repositories
	n     *nats.NatsInfra
	m     *metrics.EngineMetrics
	l     logger.Logger
}

func NewPaymentsService(db *gorm.DB, repos *repository.Repositories, n *nats.NatsInfra, m *metrics.EngineMetrics, l logger.Logger) *PaymentsService {
	return &PaymentsService{db: db, repos: repos, n: n, m: m, l: l}
}

// transition outcome, for metrics and notifications after commit
type paymentOutcome struct {
	orderId   string
	observed  bool
	confirmed bool
	extra     bool
	late      bool
}

// ApplyTransferEvent applies one observed transfer. Safe to call any
// number of times with the same event: the tx hash is the idempotency
// key and already-recorded payments only ratchet confirmations.
func (s *PaymentsService) ApplyTransferEvent(chain domain.Chain, event chains.TransferEvent, confirmations uint, threshold uint) error {
	var outcome paymentOutcome

	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		outcome = paymentOutcome{}

		addr, err := s.repos.PaymentAddresses.FindMatch(tx, chain, event.TokenContract, event.ToAddress)
		if err != nil {
			if postgres.IsNotFound(err) {
				return nil // not one of ours
			}
			return err
		}

		// exact raw-amount match only, no tolerance and no partial credit
		if event.RawAmount != addr.ExpectedRawAmount {
			return nil
		}

		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, addr.OrderID)
		if err != nil {
			return err
		}

		existing, err := s.repos.Payments.FindByTxHash(tx, event.TxHash)
		if err == nil {
			return s.ratchetConfirmations(tx, order, existing, confirmations, threshold, &outcome)
		}
		if !postgres.IsNotFound(err) {
			return err
		}

		priorPayments, err := s.repos.Payments.CountByOrder(tx, order.OrderID)
		if err != nil {
			return err
		}

		payment := &domain.Payments{
			OrderID:       order.OrderID,
			Chain:         chain,
			TxHash:        event.TxHash,
			BlockNumber:   event.Height,
			Confirmations: confirmations,
			TokenContract: event.TokenContract,
			ToAddress:     event.ToAddress,
			RawAmount:     event.RawAmount,
		}
		if err := s.repos.Payments.Create(tx, payment); err != nil {
			return err
		}
		outcome.observed = true
		outcome.orderId = order.OrderID

		if priorPayments > 0 {
			return s.markExtraPayment(tx, order, chain, event, &outcome)
		}

		if order.Status == domain.STATUS_EXPIRED {
			order.LatePaymentFlag = true
			outcome.late = true
			if err := s.repos.Orders.Update(tx, order); err != nil {
				return err
			}
			return s.repos.Events.Append(tx, order.OrderID, domain.EVENT_LATE_PAYMENT, domain.PayloadPayment{TxHash: event.TxHash, Chain: chain.ToString(), Confirmations: confirmations})
		}

		if order.Status == domain.STATUS_PENDING_PAYMENT {
			if err := s.transition(tx, order, domain.STATUS_PAYMENT_DETECTED, domain.EVENT_PAYMENT_DETECTED, domain.PayloadPayment{TxHash: event.TxHash, Chain: chain.ToString(), Confirmations: confirmations}); err != nil {
				return err
			}
		}

		if confirmations >= threshold {
			return s.confirmPayment(tx, order, payment, &outcome)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.publishOutcome(chain, outcome)
	return nil
}

// ratchetConfirmations handles re-observation of a known tx hash:
// confirmations only move up, and crossing the threshold confirms.
func (s *PaymentsService) ratchetConfirmations(tx *gorm.DB, order *domain.Orders, payment *domain.Payments, confirmations, threshold uint, outcome *paymentOutcome) error {
	if confirmations > payment.Confirmations {
		payment.Confirmations = confirmations
		if err := s.repos.Payments.Update(tx, payment); err != nil {
			return err
		}
	}

	if payment.ConfirmedAt != nil || payment.Confirmations < threshold {
		return nil
	}

	// confirmation depth reached; only a live first payment advances
	if order.Status != domain.STATUS_PAYMENT_DETECTED {
		now := time.Now()
		payment.ConfirmedAt = &now
		return s.repos.Payments.Update(tx, payment)
	}

	return s.confirmPayment(tx, order, payment, outcome)
}

func (s *PaymentsService) confirmPayment(tx *gorm.DB, order *domain.Orders, payment *domain.Payments, outcome *paymentOutcome) error {
	if err := s.transition(tx, order, domain.STATUS_PAYMENT_CONFIRMED, domain.EVENT_PAYMENT_CONFIRMED, domain.PayloadPayment{TxHash: payment.TxHash, Chain: payment.Chain.ToString(), Confirmations: payment.Confirmations}); err != nil {
		return err
	}

	now := time.Now()
	payment.ConfirmedAt = &now
	if err := s.repos.Payments.Update(tx, payment); err != nil {
		return err
	}

	outcome.confirmed = true
	outcome.orderId = order.OrderID
	return nil
}

func (s *PaymentsService) markExtraPayment(tx *gorm.DB, order *domain.Orders, chain domain.Chain, event chains.TransferEvent, outcome *paymentOutcome) error {
	order.ExtraPaymentFlag = true
	outcome.extra = true

	payload := domain.PayloadExtraPayment{
		TxHash:    event.TxHash,
		Chain:     chain.ToString(),
		ToAddress: event.ToAddress,
		RawAmount: event.RawAmount,
	}

	if order.Status.CanBecomeExtraPayment() {
		return s.transition(tx, order, domain.STATUS_EXTRA_PAYMENT, domain.EVENT_EXTRA_PAYMENT, payload)
	}

	if err := s.repos.Orders.Update(tx, order); err != nil {
		return err
	}
	return s.repos.Events.Append(tx, order.OrderID, domain.EVENT_EXTRA_PAYMENT, payload)
}

// transition asserts, writes the new status and appends the audit
// event in one go.
func (s *PaymentsService) transition(tx *gorm.DB, order *domain.Orders, next domain.Status, eventType string, payload any) error {
	if err := domain.AssertTransition(order.Status, next); err != nil {
		return err
	}
	order.Status = next
	if err := s.repos.Orders.Update(tx, order); err != nil {
		return err
	}
	return s.repos.Events.Append(tx, order.OrderID, eventType, payload)
}

func (s *PaymentsService) publishOutcome(chain domain.Chain, outcome paymentOutcome) {
	if outcome.observed {
		s.m.RecordPaymentObserved(chain.ToString())
	}
	if outcome.extra {
		s.m.RecordExtraPayment(chain.ToString())
	}
	if outcome.late {
		s.m.LatePaymentsTotal.Inc()
	}
	if outcome.confirmed {
		s.m.RecordPaymentConfirmed(chain.ToString())
		s.n.PublishJson(nats.SubjOrderPaid, map[string]string{"order_id": outcome.orderId}) //nolint:errcheck // best effort
	}
}

// RefreshBelowThreshold re-applies the payment transition for recorded
// payments that have not reached the confirmation threshold yet, using
// fresh chain depth. Covers confirmation progress without new events.
func (s *PaymentsService) RefreshBelowThreshold(chain domain.Chain, txHash string, confirmations, threshold uint) error {
	var outcome paymentOutcome

	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		outcome = paymentOutcome{}

		payment, err := s.repos.Payments.FindByTxHash(tx, txHash)
		if err != nil {
			if postgres.IsNotFound(err) {
				return nil
			}
			return err
		}

		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, payment.OrderID)
		if err != nil {
			return err
		}

		return s.ratchetConfirmations(tx, order, payment, confirmations, threshold, &outcome)
	})
	if err != nil {
		return err
	}

	s.publishOutcome(chain, outcome)
	return nil
}
