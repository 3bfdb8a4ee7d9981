package v1

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/service"
)

type Handler struct {
	services  *service.Services
	db        *gorm.DB
	config    *config.Config
	Natsinfra *nats.NatsInfra
	log       logger.Logger
}

func (h *Handler) InitRoutes(g *gin.RouterGroup) {
	{
		h.initOrderRoutes(g)
		h.initSupportRoutes(g)
		h.initAdminRoutes(g)
	}
}

func NewHandler(services *service.Services, db *gorm.DB, config *config.Config, natsinfra *nats.NatsInfra, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		Natsinfra: natsinfra,
		log:       log,
		services:  services,
		db:        db,
	}
}
