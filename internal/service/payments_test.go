package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

func newPaymentsService(e *testEnv) *PaymentsService {
	return NewPaymentsService(e.db, e.repos, e.n, testMetrics, e.l)
}

func transferTo(addr *domain.PaymentAddresses, rawAmount string) chains.TransferEvent {
	return chains.TransferEvent{
		TxHash:        "0x" + uuid.NewString(),
		Height:        100,
		TokenContract: addr.TokenContract,
		ToAddress:     addr.Address,
		RawAmount:     rawAmount,
	}
}

func TestPaymentDetectThenConfirm(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")

	event := transferTo(addr, "500000")

	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, event, 3, 12))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PAYMENT_DETECTED, got.Status)

	// same event again with enough depth confirms, still one payment row
	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, event, 12, 12))

	got, err = e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PAYMENT_CONFIRMED, got.Status)

	count, err := e.repos.Payments.CountByOrder(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	payment, err := e.repos.Payments.FindByTxHash(e.db, event.TxHash)
	require.NoError(t, err)
	assert.NotNil(t, payment.ConfirmedAt)
	assert.Equal(t, uint(12), payment.Confirmations)

	assert.Equal(t, []string{domain.EVENT_PAYMENT_DETECTED, domain.EVENT_PAYMENT_CONFIRMED}, e.eventTypes(t, order.OrderID))
}

func TestPaymentDirectConfirmAtThreshold(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")

	// already at depth on first sight: detect and confirm in one pass
	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, transferTo(addr, "500000"), 12, 12))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PAYMENT_CONFIRMED, got.Status)
	assert.Equal(t, []string{domain.EVENT_PAYMENT_DETECTED, domain.EVENT_PAYMENT_CONFIRMED}, e.eventTypes(t, order.OrderID))
}

func TestPaymentBelowThresholdStaysDetected(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")
	event := transferTo(addr, "500000")

	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, event, 11, 12))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PAYMENT_DETECTED, got.Status)

	// fresh depth pushes it over without a new event from the chain
	require.NoError(t, svc.RefreshBelowThreshold(domain.CHAIN_BSC, event.TxHash, 12, 12))

	got, err = e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PAYMENT_CONFIRMED, got.Status)
}

func TestPaymentWrongAmountIgnored(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")

	// under, over and off-by-one are all ignored
	for _, raw := range []string{"499999", "500001", "1000000", "1"} {
		require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, transferTo(addr, raw), 12, 12))
	}

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PENDING_PAYMENT, got.Status)

	count, err := e.repos.Payments.CountByOrder(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPaymentIdempotentReplay(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")
	event := transferTo(addr, "500000")

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, event, 5, 12))
	}

	count, err := e.repos.Payments.CountByOrder(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.False(t, got.ExtraPaymentFlag)
	assert.Equal(t, []string{domain.EVENT_PAYMENT_DETECTED}, e.eventTypes(t, order.OrderID))
}

func TestPaymentConfirmationsNeverRegress(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")
	event := transferTo(addr, "500000")

	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, event, 8, 12))
	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, event, 3, 12))

	payment, err := e.repos.Payments.FindByTxHash(e.db, event.TxHash)
	require.NoError(t, err)
	assert.Equal(t, uint(8), payment.Confirmations)
}

func TestExtraPaymentFlagsOrder(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")

	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, transferTo(addr, "500000"), 2, 12))

	// a second distinct transfer of the right amount is an extra payment
	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, transferTo(addr, "500000"), 2, 12))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.True(t, got.ExtraPaymentFlag)
	assert.Equal(t, domain.STATUS_EXTRA_PAYMENT, got.Status)

	count, err := e.repos.Payments.CountByOrder(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestLatePaymentFlagsExpiredOrder(t *testing.T) {
	e := newTestEnv(t)
	svc := newPaymentsService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_EXPIRED)
	addr := e.createPaymentAddress(t, order.OrderID, "500000")

	require.NoError(t, svc.ApplyTransferEvent(domain.CHAIN_BSC, transferTo(addr, "500000"), 12, 12))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.True(t, got.LatePaymentFlag)
	// the first late payment only flags, the status stays EXPIRED
	assert.Equal(t, domain.STATUS_EXPIRED, got.Status)
	assert.Equal(t, []string{domain.EVENT_LATE_PAYMENT}, e.eventTypes(t, order.OrderID))
}
