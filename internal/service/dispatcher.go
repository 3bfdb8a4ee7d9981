package service

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

// DispatchService runs the generic payout loop around one dispatcher.
// Per order it follows a strict three-phase protocol so slow chain I/O
// never sits inside a database transaction:
//
//	A: claim  - short serializable tx, creates the LOCKED shipment row
//	B: execute- submit + wait finality, no database locks held
//	C: record - short tx, writes the result
type DispatchService struct {
	db      *gorm.DB
	repos   *repository.Repositories
	n       *nats.NatsInfra
	m       *metrics.EngineMetrics
	l       logger.Logger
	batch   int
	testing bool
}

func NewDispatchService(db *gorm.DB, repos *repository.Repositories, n *nats.NatsInfra, m *metrics.EngineMetrics, l logger.Logger, batch int, testing bool) *DispatchService {
	return &DispatchService{db: db, repos: repos, n: n, m: m, l: l, batch: batch, testing: testing}
}

func (s *DispatchService) Run(ctx context.Context, d chains.Dispatcher) error {
	s.l.TemplDispatchInfo("dispatcher started", d.Name(), logger.NA, logger.NA)

	for {
		s.iterate(ctx, d)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.PollInterval()):
		}
	}
}

func (s *DispatchService) iterate(ctx context.Context, d chains.Dispatcher) {
	orders, err := s.repos.Orders.ListDispatchable(s.db, d.Kind(), s.batch)
	if err != nil {
		s.l.TemplDispatchErr("list dispatchable orders", d.Name(), logger.NA, err)
		return
	}

	for i := range orders {
		if ctx.Err() != nil {
			return
		}
		s.ProcessOrder(ctx, d, orders[i].OrderID)
	}
}

// ProcessOrder takes one order through claim, execute and record. All
// failures from phase B on park the order for manual handling, the
// payout may or may not have reached the chain.
func (s *DispatchService) ProcessOrder(ctx context.Context, d chains.Dispatcher, orderId string) {
	order, claimed, err := s.claim(d, orderId)
	if err != nil {
		s.l.TemplDispatchErr("claim", d.Name(), orderId, err)
		return
	}
	if !claimed {
		return
	}

	if s.testing {
		// fake payout for staging runs, no chain I/O at all
		txHash := gofakeit.HexUint(256)
		if err := s.recordSent(d, orderId, txHash); err != nil {
			s.l.TemplDispatchErr("record sent", d.Name(), orderId, err)
			return
		}
		if err := s.recordFulfilled(d, orderId, txHash); err != nil {
			s.l.TemplDispatchErr("record fulfilled", d.Name(), orderId, err)
		}
		return
	}

	started := time.Now()

	txHash, err := d.SubmitPayout(ctx, order)
	if err != nil {
		s.l.TemplDispatchErr("submit payout", d.Name(), orderId, err)
		s.failManual(d, orderId, txHash, "payout submission failed: "+err.Error())
		return
	}

	if err := s.recordSent(d, orderId, txHash); err != nil {
		s.l.TemplDispatchErr("record sent", d.Name(), orderId, err)
		return
	}
	s.m.RecordDispatchSent(d.Name(), time.Since(started).Seconds())
	s.l.TemplDispatchInfo("payout sent", d.Name(), orderId, txHash)

	if err := d.WaitFinality(ctx, order, txHash); err != nil {
		s.l.TemplDispatchErr("wait finality", d.Name(), orderId, err)
		s.failManual(d, orderId, txHash, "payout finality not reached: "+err.Error())
		return
	}

	if err := s.recordFulfilled(d, orderId, txHash); err != nil {
		s.l.TemplDispatchErr("record fulfilled", d.Name(), orderId, err)
	}
}

// claim is phase A: under a row lock, re-check the status and create
// the LOCKED shipment row. A shipment with a recorded tx hash is the
// proof a payout was submitted and blocks the claim; one without a tx
// hash belongs to a run that died before submitting, so it is taken
// over and the payout attempted again.
func (s *DispatchService) claim(d chains.Dispatcher, orderId string) (*domain.Orders, bool, error) {
	var order *domain.Orders
	claimed := false

	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		claimed = false

		var err error
		order, err = s.repos.Orders.FindByOrderIDForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if !order.Status.IsDispatchable() {
			return nil
		}

		existing, err := s.repos.Shipments.FindByOrderID(tx, orderId)
		if err == nil {
			if existing.TxHash != "" {
				return nil // payout already submitted
			}
			existing.Dispatcher = d.Name()
			existing.Status = domain.SHIPMENT_LOCKED
			if err := s.repos.Shipments.Update(tx, existing); err != nil {
				return err
			}
			claimed = true
			return nil
		}
		if !postgres.IsNotFound(err) {
			return err
		}

		if order.Status == domain.STATUS_PAYMENT_CONFIRMED {
			if err := domain.AssertTransition(order.Status, domain.STATUS_DISPATCH_ENQUEUED); err != nil {
				return err
			}
			order.Status = domain.STATUS_DISPATCH_ENQUEUED
			if err := s.repos.Orders.Update(tx, order); err != nil {
				return err
			}
			if err := s.repos.Events.Append(tx, orderId, domain.EVENT_DISPATCH_ENQUEUED, domain.PayloadDispatch{Dispatcher: d.Name()}); err != nil {
				return err
			}
		}

		if err := s.repos.Shipments.Create(tx, &domain.Shipments{
			OrderID:    orderId,
			Dispatcher: d.Name(),
			Status:     domain.SHIPMENT_LOCKED,
		}); err != nil {
			return err
		}

		claimed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return order, claimed, nil
}

func (s *DispatchService) recordSent(d chains.Dispatcher, orderId, txHash string) error {
	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if err := domain.AssertTransition(order.Status, domain.STATUS_DISPATCH_SENT); err != nil {
			return err
		}
		order.Status = domain.STATUS_DISPATCH_SENT
		if err := s.repos.Orders.Update(tx, order); err != nil {
			return err
		}

		shipment, err := s.repos.Shipments.FindByOrderID(tx, orderId)
		if err != nil {
			return err
		}
		if shipment.TxHash != "" && shipment.TxHash != txHash {
			return domain.ErrShipmentAlreadySet
		}
		shipment.TxHash = txHash
		shipment.Status = domain.SHIPMENT_SENT
		if err := s.repos.Shipments.Update(tx, shipment); err != nil {
			return err
		}

		return s.repos.Events.Append(tx, orderId, domain.EVENT_DISPATCH_SENT, domain.PayloadDispatch{TxHash: txHash, Dispatcher: d.Name()})
	})
	if err != nil {
		return err
	}

	s.n.PublishJson(nats.SubjOrderDispatched, map[string]string{"order_id": orderId, "tx_hash": txHash}) //nolint:errcheck // best effort
	return nil
}

func (s *DispatchService) recordFulfilled(d chains.Dispatcher, orderId, txHash string) error {
	return postgres.Serializable(s.db, func(tx *gorm.DB) error {
		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if err := domain.AssertTransition(order.Status, domain.STATUS_FULFILLED); err != nil {
			return err
		}
		order.Status = domain.STATUS_FULFILLED
		if err := s.repos.Orders.Update(tx, order); err != nil {
			return err
		}

		shipment, err := s.repos.Shipments.FindByOrderID(tx, orderId)
		if err != nil {
			return err
		}
		shipment.Status = domain.SHIPMENT_CONFIRMED
		if err := s.repos.Shipments.Update(tx, shipment); err != nil {
			return err
		}

		return s.repos.Events.Append(tx, orderId, domain.EVENT_FULFILLED, domain.PayloadDispatch{TxHash: txHash, Dispatcher: d.Name()})
	})
}

// failManual parks the order for a human. Deliberately conservative:
// nothing is retried automatically once chain I/O has started, an
// operator decides with the fail reason and any partial tx hash.
func (s *DispatchService) failManual(d chains.Dispatcher, orderId, txHash, reason string) {
	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if err := domain.AssertTransition(order.Status, domain.STATUS_FULFILL_FAILED_MANUAL); err != nil {
			return err
		}
		order.Status = domain.STATUS_FULFILL_FAILED_MANUAL
		order.FailReason = reason
		if err := s.repos.Orders.Update(tx, order); err != nil {
			return err
		}

		shipment, err := s.repos.Shipments.FindByOrderID(tx, orderId)
		if err != nil {
			return err
		}
		if txHash != "" && shipment.TxHash == "" {
			shipment.TxHash = txHash
		}
		shipment.Status = domain.SHIPMENT_FAILED_MANUAL
		if err := s.repos.Shipments.Update(tx, shipment); err != nil {
			return err
		}

		return s.repos.Events.Append(tx, orderId, domain.EVENT_DISPATCH_FAILED_MANUAL, domain.PayloadDispatch{TxHash: txHash, Dispatcher: d.Name(), Reason: reason})
	})
	if err != nil {
		s.l.TemplDispatchErr("mark failed manual", d.Name(), orderId, err)
		return
	}

	s.m.RecordDispatchFailed(d.Name())
	s.n.PublishJson(nats.SubjOrderManual, map[string]string{"order_id": orderId, "reason": reason}) //nolint:errcheck // best effort
}
