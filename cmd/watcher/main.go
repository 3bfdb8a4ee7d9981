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
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains/tron"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
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
	cursors := service.NewDbCursorStore(config.DB, repository.InitCursorsRepo(), m)

	watchers := buildWatchers(config, cursors, unixLogger)
	if len(watchers) == 0 {
		panic("watcher: no chain configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range watchers {
		w := w
		g.Go(func() error {
			return services.Watcher.Run(ctx, w)
		})
	}

	g.Wait() //nolint:errcheck // loops only return on shutdown
}

// buildWatchers instantiates one watcher per valid chain section. A
// section failing validation is reported and skipped, not fatal.
func buildWatchers(conf *config.Config, cursors chains.CursorStore, log logger.Logger) []chains.Watcher {
	var watchers []chains.Watcher

	for i := range conf.Watch.Evm {
		cfg := conf.Watch.Evm[i]
		if err := cfg.Validate(); err != nil {
			log.TemplWatcherErr("skipping chain", cfg.Chain, err)
			continue
		}
		w, err := evm.NewWatcher(cfg, cursors, log)
		if err != nil {
			log.TemplWatcherErr("init watcher", cfg.Chain, err)
			continue
		}
		watchers = append(watchers, w)
	}

	if cfg := conf.Watch.Sol; cfg != nil {
		if err := cfg.Validate(); err != nil {
			log.TemplWatcherErr("skipping chain", "SOL", err)
		} else if w, err := sol.NewWatcher(*cfg, cursors, log); err != nil {
			log.TemplWatcherErr("init watcher", "SOL", err)
		} else {
			watchers = append(watchers, w)
		}
	}

	if cfg := conf.Watch.Tron; cfg != nil {
		if err := cfg.Validate(); err != nil {
			log.TemplWatcherErr("skipping chain", "TRON", err)
		} else if w, err := tron.NewWatcher(*cfg, cursors, log); err != nil {
			log.TemplWatcherErr("init watcher", "TRON", err)
		} else {
			watchers = append(watchers, w)
		}
	}

	return watchers
}
