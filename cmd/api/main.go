package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/app"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
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

	app := &app.App{
		Config:    config,
		Db:        config.DB,
		NatsInfra: natsinfra,
		Log:       unixLogger,
		Metrics:   metrics.New(),
	}

	app.Start()
}
