package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains/evm"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains/sol"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains/sui"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains/ton"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/service"
)

func main() {
	err := godotenv.Load(os.Getenv("ENVPATH"))
	if err != nil {
		panic("Can't load .env file: " + err.Error())
	}

	config := config.ReadConfig()
	config.DB = postgres.Init(config)

	unixLogger := logger.Init(config)

	natsinfra := nats.Init(config, unixLogger)
	unixLogger = unixLogger.WithSink(natsinfra)
	defer natsinfra.Drain()

	m := metrics.New()
	services := service.NewServices(config.DB, natsinfra, m, unixLogger, config)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatchers := buildDispatchers(ctx, config, unixLogger)
	if len(dispatchers) == 0 {
		panic("dispatcher: no fulfillment kind configured")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, d := range dispatchers {
		d := d
		g.Go(func() error {
			return services.Dispatch.Run(ctx, d)
		})
	}

	g.Wait() //nolint:errcheck // loops only return on shutdown
}

// buildDispatchers instantiates one dispatcher per valid fulfillment
// kind section. A section failing validation is reported and skipped,
// its orders stay queued until an operator fixes the config.
func buildDispatchers(ctx context.Context, conf *config.Config, log logger.Logger) []chains.Dispatcher {
	var dispatchers []chains.Dispatcher

	if len(conf.Dispatch.Evm) > 0 {
		valid := make([]config.EvmDispatch, 0, len(conf.Dispatch.Evm))
		for i := range conf.Dispatch.Evm {
			cfg := conf.Dispatch.Evm[i]
			if err := cfg.Validate(); err != nil {
				log.TemplDispatchErr("skipping product lane", "dispatcher-evm", cfg.ProductID, err)
				continue
			}
			valid = append(valid, cfg)
		}
		if len(valid) > 0 {
			if d, err := evm.NewDispatcher(valid, log); err != nil {
				log.TemplDispatchErr("init dispatcher", "dispatcher-evm", logger.NA, err)
			} else {
				dispatchers = append(dispatchers, d)
			}
		}
	}

	if cfg := conf.Dispatch.Sol; cfg != nil {
		if err := cfg.Validate(); err != nil {
			log.TemplDispatchErr("skipping dispatcher", "dispatcher-solana", logger.NA, err)
		} else if d, err := sol.NewDispatcher(ctx, *cfg, log); err != nil {
			log.TemplDispatchErr("init dispatcher", "dispatcher-solana", logger.NA, err)
		} else {
			dispatchers = append(dispatchers, d)
		}
	}

	if cfg := conf.Dispatch.Ton; cfg != nil {
		if err := cfg.Validate(); err != nil {
			log.TemplDispatchErr("skipping dispatcher", "dispatcher-ton", logger.NA, err)
		} else if d, err := ton.NewDispatcher(ctx, *cfg, log); err != nil {
			log.TemplDispatchErr("init dispatcher", "dispatcher-ton", logger.NA, err)
		} else {
			dispatchers = append(dispatchers, d)
		}
	}

	if cfg := conf.Dispatch.Sui; cfg != nil {
		if err := cfg.Validate(); err != nil {
			log.TemplDispatchErr("skipping dispatcher", "dispatcher-sui", logger.NA, err)
		} else if d, err := sui.NewDispatcher(*cfg, log); err != nil {
			log.TemplDispatchErr("init dispatcher", "dispatcher-sui", logger.NA, err)
		} else {
			dispatchers = append(dispatchers, d)
		}
	}

	return dispatchers
}
