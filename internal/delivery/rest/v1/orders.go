package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

// POST /{version}/order/create
func (h *Handler) orderCreate(c *gin.Context) {
	var req domain.RequestCreateOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	order, err := h.services.Orders.Create(&req, c.ClientIP())
	if err != nil {
		errid := ""
		if errors.Is(err, domain.ErrInternalServerError) {
			errid = logger.GenErrorId()
			h.log.TemplOrderErr("order create error", errid, logger.NA, req.ProductID, c.Request.RequestURI, c.ClientIP())
		}
		responseDomainErr(c, err, errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOrder{Error: false, Order: order})
}

// GET /{version}/order/:order_id
func (h *Handler) orderInfo(c *gin.Context) {
	order, err := h.services.Orders.Get(c.Param("order_id"))
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOrder{Error: false, Order: order})
}

// GET /{version}/products
func (h *Handler) productList(c *gin.Context) {
	products, err := h.services.Orders.Products()
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseProducts{Error: false, Products: products})
}

func (h *Handler) initOrderRoutes(g *gin.RouterGroup) {
	g.POST("/order/create", h.orderCreate)
	g.GET("/order/:order_id", h.orderInfo)
	g.GET("/products", h.productList)
}
