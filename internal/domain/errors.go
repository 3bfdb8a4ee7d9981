package domain

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	ErrMsgInternalServerError = "internal server error"
	ErrMsgBadRequest          = "bad request"
	ErrMsgRateLimitExceeded   = "rate limit exceeded"
	ErrMsgAccessError         = "access error"

	ErrMsgInvalidOrderId  = "invalid order id"
	ErrMsgOrderNotFound   = "order not found"
	ErrMsgProductNotFound = "product not found or disabled"
	ErrMsgTicketNotFound  = "support ticket not found"

	ErrMsgPoolExhaustedParams = "address pool exhausted for %s/%s"
)

var (
	ErrInternalServerError = errors.New(ErrMsgInternalServerError)
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrInvalidOrderId      = errors.New(ErrMsgInvalidOrderId)
	ErrOrderNotFound       = errors.New(ErrMsgOrderNotFound)
	ErrProductNotFound     = errors.New(ErrMsgProductNotFound)
	ErrTicketNotFound      = errors.New(ErrMsgTicketNotFound)
	ErrPoolExhausted       = errors.New("address pool exhausted")
	ErrChainNotConfigured  = errors.New("chain not configured")
	ErrRateLimited         = errors.New(ErrMsgRateLimitExceeded)

	ErrInvalidQuantity    = errors.New("quantity must be a positive integer matching the product's min/step")
	ErrInvalidAddress     = errors.New("invalid fulfillment address format")
	ErrClusterRequired    = errors.New("cluster is required for this product")
	ErrClusterNotAllowed  = errors.New("cluster is only allowed for Solana products")
	ErrInvalidAmount      = errors.New("invalid decimal amount")
	ErrNotEligibleManual  = errors.New("order is not eligible for manual fulfill")
	ErrNotEligibleRetry   = errors.New("only failed manual fulfillment orders can be retried")
	ErrRetryHasTxHash     = errors.New("a payout tx hash is recorded, verify it on chain and fulfill manually")
	ErrShipmentAlreadySet = errors.New("shipment already has a tx hash")
)

// PoolExhaustedError carries the starved rail so callers can report
// which pool ran dry. Unwraps to ErrPoolExhausted.
type PoolExhaustedError struct {
	Chain       Chain
	TokenSymbol string
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf(ErrMsgPoolExhaustedParams, e.Chain.ToString(), e.TokenSymbol)
}

func (e *PoolExhaustedError) Unwrap() error { return ErrPoolExhausted }

func PoolExhausted(chain Chain, tokenSymbol string) error {
	return &PoolExhaustedError{Chain: chain, TokenSymbol: tokenSymbol}
}

// GetStatusByErr maps domain errors to http status codes for the rest layer
func GetStatusByErr(err error) int {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrProductNotFound), errors.Is(err, ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPoolExhausted), errors.Is(err, ErrChainNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrRetryHasTxHash):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidOrderId), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidAddress),
		errors.Is(err, ErrClusterRequired), errors.Is(err, ErrClusterNotAllowed), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotEligibleManual), errors.Is(err, ErrNotEligibleRetry):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
