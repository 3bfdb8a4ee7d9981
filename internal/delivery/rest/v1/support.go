package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

// POST /{version}/support/ticket
func (h *Handler) ticketCreate(c *gin.Context) {
	var req domain.RequestCreateTicket
	if err := c.ShouldBindJSON(&req); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	ticket, err := h.services.Support.CreateTicket(&req)
	if err != nil {
		responseDomainErr(c, err, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseTicket{Error: false, Ticket: ticket})
}

func (h *Handler) initSupportRoutes(g *gin.RouterGroup) {
	g.POST("/support/ticket", h.ticketCreate)
}
