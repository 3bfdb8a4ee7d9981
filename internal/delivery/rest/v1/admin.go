package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type adminOrderView struct {
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	ProductID        string `json:"product_id"`
	LatePaymentFlag  bool   `json:"late_payment_flag"`
	ExtraPaymentFlag bool   `json:"extra_payment_flag"`
	FailReason       string `json:"fail_reason,omitempty"`
	UpdatedAt        string `json:"updated_at"`
}

type adminEventView struct {
	EventType string `json:"event_type"`
	Payload   string `json:"payload"`
	CreatedAt string `json:"created_at"`
}

type responseFlaggedOrders struct {
	Error  bool             `json:"error"`
	Orders []adminOrderView `json:"orders"`
}

type responseOrderEvents struct {
	Error  bool             `json:"error"`
	Events []adminEventView `json:"events"`
}

// POST /{version}/admin/order/:order_id/manual-fulfill
func (h *Handler) manualFulfill(c *gin.Context) {
	var req domain.RequestManualFulfill
	if err := c.ShouldBindJSON(&req); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	if err := h.services.Admin.ManualFulfill(c.Param("order_id"), req.TxHash); err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseAck{Error: false})
}

// POST /{version}/admin/order/:order_id/retry-dispatch
func (h *Handler) retryDispatch(c *gin.Context) {
	if err := h.services.Admin.RetryDispatch(c.Param("order_id")); err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseAck{Error: false})
}

// GET /{version}/admin/orders/flagged
func (h *Handler) flaggedOrders(c *gin.Context) {
	orders, err := h.services.Admin.ListFlagged()
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	views := make([]adminOrderView, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		views = append(views, adminOrderView{
			OrderID:          o.OrderID,
			Status:           o.Status.ToString(),
			ProductID:        o.ProductID,
			LatePaymentFlag:  o.LatePaymentFlag,
			ExtraPaymentFlag: o.ExtraPaymentFlag,
			FailReason:       o.FailReason,
			UpdatedAt:        o.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.AbortWithStatusJSON(http.StatusOK, responseFlaggedOrders{Error: false, Orders: views})
}

// GET /{version}/admin/order/:order_id/events
func (h *Handler) orderEvents(c *gin.Context) {
	events, err := h.services.Admin.ListEvents(c.Param("order_id"))
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	views := make([]adminEventView, 0, len(events))
	for i := range events {
		views = append(views, adminEventView{
			EventType: events[i].EventType,
			Payload:   events[i].Payload,
			CreatedAt: events[i].CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOrderEvents{Error: false, Events: views})
}

// POST /{version}/admin/pool/provision
func (h *Handler) provisionPool(c *gin.Context) {
	var req domain.RequestProvisionPool
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Addresses) == 0 {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	inserted, err := h.services.Admin.ProvisionPool(&req)
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseProvisioned{Error: false, Inserted: inserted})
}

// POST /{version}/admin/pool/release
func (h *Handler) releaseAddress(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	if err := h.services.Admin.ReleaseAddress(req.Address); err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseAck{Error: false})
}

// GET /{version}/admin/tickets
func (h *Handler) openTickets(c *gin.Context) {
	tickets, err := h.services.Support.ListOpen()
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseTickets{Error: false, Tickets: tickets})
}

// POST /{version}/admin/ticket/:ticket_id/close
func (h *Handler) closeTicket(c *gin.Context) {
	ticket, err := h.services.Support.CloseTicket(c.Param("ticket_id"))
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseTicket{Error: false, Ticket: ticket})
}

func (h *Handler) initAdminRoutes(g *gin.RouterGroup) {
	admin := g.Group("/admin", h.adminAccessMiddleware())

	admin.POST("/order/:order_id/manual-fulfill", h.manualFulfill)
	admin.POST("/order/:order_id/retry-dispatch", h.retryDispatch)
	admin.GET("/orders/flagged", h.flaggedOrders)
	admin.GET("/order/:order_id/events", h.orderEvents)
	admin.POST("/pool/provision", h.provisionPool)
	admin.POST("/pool/release", h.releaseAddress)
	admin.GET("/tickets", h.openTickets)
	admin.POST("/ticket/:ticket_id/close", h.closeTicket)
}
