package service

import (
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

// AdminService is the operator escape hatch: everything here mutates
// orders outside the automated watcher/dispatcher loops, but still only
// through the transition table.
type AdminService struct {
	db    *gorm.DB
	repos *repository.Repositories
	n     *nats.NatsInfra
	l     logger.Logger
}

func NewAdminService(db *gorm.DB, repos *repository.Repositories, n *nats.NatsInfra, l logger.Logger) *AdminService {
	return &AdminService{db: db, repos: repos, n: n, l: l}
}

// ManualFulfill closes out an order whose payout the operator verified
// (or performed) by hand. Allowed from DISPATCH_SENT, when finality
// never got recorded, and from FULFILL_FAILED_MANUAL.
func (s *AdminService) ManualFulfill(orderId string, txHash string) error {
	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, orderId)
		if err != nil {
			if postgres.IsNotFound(err) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		if order.Status != domain.STATUS_DISPATCH_SENT && order.Status != domain.STATUS_FULFILL_FAILED_MANUAL {
			return domain.ErrNotEligibleManual
		}
		if err := domain.AssertTransition(order.Status, domain.STATUS_FULFILLED); err != nil {
			return err
		}
		order.Status = domain.STATUS_FULFILLED
		order.FailReason = ""
		if err := s.repos.Orders.Update(tx, order); err != nil {
			return err
		}

		shipment, err := s.repos.Shipments.FindByOrderID(tx, orderId)
		if err != nil {
			if !postgres.IsNotFound(err) {
				return err
			}
			shipment = &domain.Shipments{OrderID: orderId, Dispatcher: domain.DISPATCHER_MANUAL}
			shipment.TxHash = txHash
			shipment.Status = domain.SHIPMENT_SENT_MANUAL
			if err := s.repos.Shipments.Create(tx, shipment); err != nil {
				return err
			}
		} else {
			shipment.TxHash = txHash
			shipment.Status = domain.SHIPMENT_SENT_MANUAL
			if err := s.repos.Shipments.Update(tx, shipment); err != nil {
				return err
			}
		}

		return s.repos.Events.Append(tx, orderId, domain.EVENT_MANUAL_FULFILL, domain.PayloadDispatch{TxHash: txHash, Dispatcher: domain.DISPATCHER_MANUAL})
	})
	if err != nil {
		return err
	}

	s.l.TemplDispatchInfo("manual fulfill", domain.DISPATCHER_MANUAL, orderId, txHash)
	return nil
}

// RetryDispatch puts a failed order back into the dispatch queue. The
// stale shipment claim is dropped so a dispatcher can claim it fresh.
// Refused when the shipment carries a tx hash: the first payout may
// have landed and re-dispatching would pay twice.
func (s *AdminService) RetryDispatch(orderId string) error {
	err := postgres.Serializable(s.db, func(tx *gorm.DB) error {
		order, err := s.repos.Orders.FindByOrderIDForUpdate(tx, orderId)
		if err != nil {
			if postgres.IsNotFound(err) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		if order.Status != domain.STATUS_FULFILL_FAILED_MANUAL {
			return domain.ErrNotEligibleRetry
		}

		if shipment, err := s.repos.Shipments.FindByOrderID(tx, orderId); err == nil {
			if shipment.TxHash != "" {
				return domain.ErrRetryHasTxHash
			}
		} else if !postgres.IsNotFound(err) {
			return err
		}
		if err := domain.AssertTransition(order.Status, domain.STATUS_DISPATCH_ENQUEUED); err != nil {
			return err
		}
		order.Status = domain.STATUS_DISPATCH_ENQUEUED
		order.FailReason = ""
		if err := s.repos.Orders.Update(tx, order); err != nil {
			return err
		}

		if err := s.repos.Shipments.DeleteByOrderID(tx, orderId); err != nil {
			return err
		}

		return s.repos.Events.Append(tx, orderId, domain.EVENT_MANUAL_RETRY_DISPATCH, nil)
	})
	if err != nil {
		return err
	}

	s.l.TemplDispatchInfo("manual retry dispatch", domain.DISPATCHER_MANUAL, orderId, logger.NA)
	return nil
}

// ListFlagged returns orders marked with a late or extra payment flag.
func (s *AdminService) ListFlagged() ([]domain.Orders, error) {
	orders, err := s.repos.Orders.ListFlagged(s.db)
	if err != nil {
		return nil, domain.ErrInternalServerError
	}
	return orders, nil
}

func (s *AdminService) ListEvents(orderId string) ([]domain.OrderEvents, error) {
	if _, err := s.repos.Orders.FindByOrderID(s.db, orderId); err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.ErrInternalServerError
	}

	events, err := s.repos.Events.ListByOrder(s.db, orderId)
	if err != nil {
		return nil, domain.ErrInternalServerError
	}
	return events, nil
}

// ProvisionPool inserts operator-supplied deposit addresses. All-or-nothing:
// a duplicate address fails the whole batch.
func (s *AdminService) ProvisionPool(req *domain.RequestProvisionPool) (int, error) {
	chain := domain.StrToChain(req.Chain)
	if chain.IsNone() {
		return 0, domain.ErrChainNotConfigured
	}

	contract := domain.CanonicalContract(chain, req.TokenContract)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, address := range req.Addresses {
			entry := &domain.AddressPool{
				Chain:         chain,
				TokenSymbol:   req.TokenSymbol,
				TokenContract: contract,
				Address:       domain.CanonicalAddress(chain, address),
			}
			if err := s.repos.Pool.Insert(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.l.TemplOrderErr("provision pool: "+err.Error(), logger.GenErrorId(), logger.NA, logger.NA, logger.NA, logger.NA)
		return 0, domain.ErrInternalServerError
	}

	return len(req.Addresses), nil
}

// ReleaseAddress returns one pool address to the free list. Only ever
// triggered by an operator, the engine itself never un-assigns.
func (s *AdminService) ReleaseAddress(address string) error {
	return s.repos.Pool.Release(s.db, address)
}
