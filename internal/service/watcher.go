package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

// DbCursorStore persists watcher cursors through the cursors repo.
type DbCursorStore struct {
	db   *gorm.DB
	repo repository.Cursors
	m    *metrics.EngineMetrics
}

func NewDbCursorStore(db *gorm.DB, repo repository.Cursors, m *metrics.EngineMetrics) *DbCursorStore {
	return &DbCursorStore{db: db, repo: repo, m: m}
}

func (c *DbCursorStore) Get(chain domain.Chain, scanKey string) (uint64, bool, error) {
	cursor, err := c.repo.Get(c.db, chain, scanKey)
	if err != nil {
		if postgres.IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return cursor.Position, true, nil
}

func (c *DbCursorStore) Put(chain domain.Chain, scanKey string, position uint64, unit string) error {
	if err := c.repo.Put(c.db, chain, scanKey, position, unit); err != nil {
		return err
	}
	c.m.RecordCursor(chain.ToString(), scanKey, position)
	return nil
}

// WatcherService runs the generic scan loop around one chain watcher.
type WatcherService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	payments *PaymentsService
	m        *metrics.EngineMetrics
	l        logger.Logger
}

func NewWatcherService(db *gorm.DB, repos *repository.Repositories, payments *PaymentsService, m *metrics.EngineMetrics, l logger.Logger) *WatcherService {
	return &WatcherService{db: db, repos: repos, payments: payments, m: m, l: l}
}

// Run polls forever until ctx is cancelled. Errors never stop the
// loop, they skip to the next tick.
func (s *WatcherService) Run(ctx context.Context, w chains.Watcher) error {
	chain := w.Chain()
	s.l.TemplWatcherInfo("watcher started", chain.ToString(), "poll_interval", w.PollInterval().String())

	for {
		s.iterate(ctx, w)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.PollInterval()):
		}
	}
}

func (s *WatcherService) iterate(ctx context.Context, w chains.Watcher) {
	chain := w.Chain()

	targets, err := s.awaitedTargets(chain)
	if err != nil {
		s.m.RecordScanError(chain.ToString())
		s.l.TemplWatcherErr("list awaited addresses", chain.ToString(), err)
		return
	}

	events, err := w.Poll(ctx, targets)
	if err != nil {
		s.m.RecordScanError(chain.ToString())
		s.l.TemplWatcherErr("scan", chain.ToString(), err)
		// events observed before the failure are still applied
	}

	for _, event := range events {
		confirmations, err := w.Confirmations(ctx, &domain.Payments{BlockNumber: event.Height})
		if err != nil {
			s.l.TemplWatcherErr("confirmations for "+event.TxHash, chain.ToString(), err)
			continue
		}

		if err := s.payments.ApplyTransferEvent(chain, event, confirmations, w.ConfirmThreshold()); err != nil {
			// one order's failure never aborts the batch
			s.l.TemplWatcherErr("apply transfer "+event.TxHash, chain.ToString(), err)
		}
	}

	s.refreshConfirmations(ctx, w)
}

// refreshConfirmations re-checks depth for recorded payments still
// below threshold, so orders confirm even without new transfers.
func (s *WatcherService) refreshConfirmations(ctx context.Context, w chains.Watcher) {
	chain := w.Chain()

	pending, err := s.repos.Payments.ListUnconfirmed(s.db, chain)
	if err != nil {
		s.l.TemplWatcherErr("list unconfirmed payments", chain.ToString(), err)
		return
	}

	for i := range pending {
		payment := &pending[i]

		confirmations, err := w.Confirmations(ctx, payment)
		if err != nil {
			s.l.TemplWatcherErr("refresh confirmations for "+payment.TxHash, chain.ToString(), err)
			continue
		}
		if confirmations <= payment.Confirmations && confirmations < w.ConfirmThreshold() {
			continue
		}

		if err := s.payments.RefreshBelowThreshold(chain, payment.TxHash, confirmations, w.ConfirmThreshold()); err != nil {
			s.l.TemplWatcherErr("refresh payment "+payment.TxHash, chain.ToString(), err)
		}
	}
}

func (s *WatcherService) awaitedTargets(chain domain.Chain) ([]chains.WatchTarget, error) {
	addrs, err := s.repos.PaymentAddresses.ListAwaited(s.db, chain)
	if err != nil {
		return nil, err
	}

	targets := make([]chains.WatchTarget, 0, len(addrs))
	for _, a := range addrs {
		targets = append(targets, chains.WatchTarget{
			OrderID:           a.OrderID,
			TokenContract:     a.TokenContract,
			Address:           a.Address,
			ExpectedRawAmount: a.ExpectedRawAmount,
		})
	}
	return targets, nil
}
