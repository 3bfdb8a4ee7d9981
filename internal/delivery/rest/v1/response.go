package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type responseError struct {
	Error   bool   `json:"error"`
	ErrorID string `json:"error_id"`
	Msg     string `json:"msg"`
}

type responseOrder struct {
	Error bool                      `json:"error"`
	Order *domain.ResponseOrderInfo `json:"order"`
}

type responseProducts struct {
	Error    bool                         `json:"error"`
	Products []domain.ResponseProductInfo `json:"products"`
}

type responseTicket struct {
	Error  bool                       `json:"error"`
	Ticket *domain.ResponseTicketInfo `json:"ticket"`
}

type responseTickets struct {
	Error   bool                        `json:"error"`
	Tickets []domain.ResponseTicketInfo `json:"tickets"`
}

type responseProvisioned struct {
	Error    bool `json:"error"`
	Inserted int  `json:"inserted"`
}

type responseAck struct {
	Error bool `json:"error"`
}

func responseErr(c *gin.Context, statusCode int, msg, errorID string) {
	c.AbortWithStatusJSON(statusCode, responseError{true, errorID, msg})
}

// responseDomainErr maps a service error to its http status
func responseDomainErr(c *gin.Context, err error, errorID string) {
	responseErr(c, domain.GetStatusByErr(err), err.Error(), errorID)
}
