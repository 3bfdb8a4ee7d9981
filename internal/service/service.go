package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

type Services struct {
	Orders    *OrdersService
	Payments  *PaymentsService
	Watcher   *WatcherService
	Dispatch  *DispatchService
	Expiry    *ExpiryService
	Admin     *AdminService
	Support   *SupportService
	RateLimit *RateLimitService
}

func NewServices(db *gorm.DB, n *nats.NatsInfra, m *metrics.EngineMetrics, l logger.Logger, cfg *config.Config) *Services {
	repos := repository.New()

	rateLimit := NewRateLimitService(cfg.Order.RateLimitPerMinute, time.Minute)
	expiry := NewExpiryService(db, repos, n, m, l, time.Duration(cfg.Order.SweepSeconds)*time.Second)
	payments := NewPaymentsService(db, repos, n, m, l)

	return &Services{
		Orders:    NewOrdersService(db, repos, RailsFromConfig(cfg), rateLimit, expiry, n, m, l, time.Duration(cfg.Order.ExpiryMinutes)*time.Minute),
		Payments:  payments,
		Watcher:   NewWatcherService(db, repos, payments, m, l),
		Dispatch:  NewDispatchService(db, repos, n, m, l, cfg.Order.DispatchBatch, cfg.Testing.Enabled),
		Expiry:    expiry,
		Admin:     NewAdminService(db, repos, n, l),
		Support:   NewSupportService(db, repos.Support, repos.Orders, repos.Events, n, l),
		RateLimit: rateLimit,
	}
}

// RailsFromConfig flattens the watcher sections into the payment rails
// order creation offers. Invalid chain sections are skipped here the
// same way the watchers skip them at startup.
func RailsFromConfig(cfg *config.Config) []PaymentRail {
	var rails []PaymentRail

	for i := range cfg.Watch.Evm {
		w := &cfg.Watch.Evm[i]
		if w.Validate() != nil {
			continue
		}
		chain := domain.StrToChain(w.Chain)
		for _, t := range w.Tokens {
			rails = append(rails, PaymentRail{
				Chain:    chain,
				Symbol:   t.Symbol,
				Contract: domain.CanonicalContract(chain, t.Contract),
				Decimals: t.Decimals,
			})
		}
	}

	if w := cfg.Watch.Sol; w != nil && w.Validate() == nil {
		for _, t := range w.Tokens {
			rails = append(rails, PaymentRail{
				Chain:    domain.CHAIN_SOL,
				Symbol:   t.Symbol,
				Contract: t.Contract,
				Decimals: t.Decimals,
			})
		}
	}

	if w := cfg.Watch.Tron; w != nil && w.Validate() == nil {
		for _, t := range w.Tokens {
			rails = append(rails, PaymentRail{
				Chain:    domain.CHAIN_TRON,
				Symbol:   t.Symbol,
				Contract: t.Contract,
				Decimals: t.Decimals,
			})
		}
	}

	return rails
}
