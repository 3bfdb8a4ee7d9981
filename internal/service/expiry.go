package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

// sweepBatchSize bounds one sweep pass, leftovers wait for the next tick.
const sweepBatchSize = 500

// ExpiryService times out unpaid orders. Two triggers feed the same
// idempotent Expire: a per-order timer armed at creation, and a
// periodic sweep that catches orders whose timer was lost to a restart.
type ExpiryService struct {
	db    *gorm.DB
	repos *repository.Repositories
	n     *nats.NatsInfra
	m     *metrics.EngineMetrics
	l     logger.Logger

	sweepEvery time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewExpiryService(db *gorm.DB, repos *repository.Repositories, n *nats.NatsInfra, m *metrics.EngineMetrics, l logger.Logger, sweepEvery time.Duration) *ExpiryService {
	return &ExpiryService{
		db:         db,
		repos:      repos,
		n:          n,
		m:          m,
		l:          l,
		sweepEvery: sweepEvery,
		timers:     make(map[string]*time.Timer),
	}
}

// Schedule arms an in-process timer for the order's deadline. Timers
// are a latency optimization only, correctness comes from the sweep.
func (s *ExpiryService) Schedule(orderId string, at time.Time) {
	d := time.Until(at)
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[orderId]; ok {
		t.Stop()
	}
	s.timers[orderId] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, orderId)
		s.mu.Unlock()

		if err := s.Expire(orderId); err != nil {
			s.l.TemplOrderErr("expire order: "+err.Error(), logger.GenErrorId(), orderId, logger.NA, logger.NA, logger.NA)
		}
	})
}

// Run drives the sweep loop until the context is cancelled.
func (s *ExpiryService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep expires every overdue order still waiting for payment.
func (s *ExpiryService) Sweep() {
	orders, err := s.repos.Orders.ListExpiryCandidates(s.db, time.Now(), sweepBatchSize)
	if err != nil {
		s.l.TemplOrderErr("list expiry candidates: "+err.Error(), logger.GenErrorId(), logger.NA, logger.NA, logger.NA, logger.NA)
		return
	}

	for i := range orders {
		if err := s.Expire(orders[i].OrderID); err != nil {
			s.l.TemplOrderErr("expire order: "+err.Error(), logger.GenErrorId(), orders[i].OrderID, orders[i].ProductID, logger.NA, logger.NA)
		}
	}
}

// Expire moves one order to EXPIRED. Safe to call any number of times
// and from any trigger: it re-checks the deadline and the status under
// a row lock and quietly does nothing when the order already moved on.
func (s *ExpiryService) Expire(orderId string) error {
	expired := false

	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		expired = false

		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, orderId)
		if err != nil {
			if postgres.IsNotFound(err) {
				return nil
			}
			return err
		}

		if order.Status != domain.STATUS_PENDING_PAYMENT && order.Status != domain.STATUS_PAYMENT_DETECTED {
			return nil
		}
		if time.Now().Before(order.ExpiresAt) {
			return nil
		}

		if err := domain.AssertTransition(order.Status, domain.STATUS_EXPIRED); err != nil {
			return err
		}
		order.Status = domain.STATUS_EXPIRED
		if err := s.repos.Orders.Update(tx, order); err != nil {
			return err
		}

		if err := s.repos.Events.Append(tx, orderId, domain.EVENT_ORDER_EXPIRED, nil); err != nil {
			return err
		}

		expired = true
		return nil
	})
	if err != nil {
		return err
	}

	if expired {
		s.m.OrdersExpiredTotal.Inc()
		s.n.PublishJson(nats.SubjOrderExpired, map[string]string{"order_id": orderId}) //nolint:errcheck // best effort
		s.l.TemplOrderInfo("order expired", orderId, logger.NA)
	}

	return nil
}
