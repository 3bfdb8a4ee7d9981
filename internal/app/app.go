package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cors "github.com/rs/cors/wrapper/gin"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/delivery"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/service"
)

type App struct {
	Config    *config.Config
	Db        *gorm.DB
	NatsInfra *nats.NatsInfra
	Log       logger.Logger
	Metrics   *metrics.EngineMetrics
}

func (app *App) Start() {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(cors.Default())

	services := service.NewServices(app.Db, app.NatsInfra, app.Metrics, app.Log, app.Config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.Autostart(ctx, services)

	{
		h := delivery.InitHandler(services, app.Db, app.Config, app.NatsInfra, app.Log)

		h.InitAPI(r)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	eChan := make(chan error)
	interrupt := make(chan os.Signal, 1)

	fmt.Println("api is starting")

	go func() {
		err := r.Run(app.Config.Api.Ipv4)
		if err != nil {
			eChan <- fmt.Errorf("listen and serve: %w", err)
		}
	}()

	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-eChan:
		app.Log.TemplHTTPError("app fatal error", app.Config.Api.Ipv4, err)
		return
	case <-interrupt:
		return
	}
}

// Autostart launches the background loops that live inside the api
// process: the expiry sweeper and the rate limit map cleanup.
func (app *App) Autostart(ctx context.Context, services *service.Services) {
	fmt.Println("Autostart: expiry sweep")
	services.Expiry.Sweep() // catch orders whose timers died with the last process
	go services.Expiry.Run(ctx)

	fmt.Println("Autostart: rate limit cleanup")
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				services.RateLimit.Sweep()
			}
		}
	}()
}
