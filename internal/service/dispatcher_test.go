package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

// fakeDispatcher scripts submit/finality results and counts calls
type fakeDispatcher struct {
	submits   int
	waits     int
	txHash    string
	submitErr error
	waitErr   error
}

func (f *fakeDispatcher) Kind() domain.FulfillmentKind { return domain.KIND_EVM }
func (f *fakeDispatcher) Name() string                 { return domain.DISPATCHER_EVM }
func (f *fakeDispatcher) PollInterval() time.Duration  { return time.Second }

func (f *fakeDispatcher) SubmitPayout(ctx context.Context, order *domain.Orders) (string, error) {
	f.submits++
	return f.txHash, f.submitErr
}

func (f *fakeDispatcher) WaitFinality(ctx context.Context, order *domain.Orders, txHash string) error {
	f.waits++
	return f.waitErr
}

func newDispatchService(e *testEnv, testing bool) *DispatchService {
	return NewDispatchService(e.db, e.repos, e.n, testMetrics, e.l, 30, testing)
}

func TestDispatchHappyPath(t *testing.T) {
	e := newTestEnv(t)
	svc := newDispatchService(e, false)
	d := &fakeDispatcher{txHash: "0xcafe"}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	svc.ProcessOrder(context.Background(), d, order.OrderID)

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILLED, got.Status)

	shipment, err := e.repos.Shipments.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "0xcafe", shipment.TxHash)
	assert.Equal(t, domain.SHIPMENT_CONFIRMED, shipment.Status)
	assert.Equal(t, domain.DISPATCHER_EVM, shipment.Dispatcher)

	assert.Equal(t, 1, d.submits)
	assert.Equal(t, 1, d.waits)
	assert.Equal(t, []string{domain.EVENT_DISPATCH_ENQUEUED, domain.EVENT_DISPATCH_SENT, domain.EVENT_FULFILLED}, e.eventTypes(t, order.OrderID))
}

func TestDispatchAtMostOnce(t *testing.T) {
	e := newTestEnv(t)
	svc := newDispatchService(e, false)
	d := &fakeDispatcher{txHash: "0xcafe"}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	svc.ProcessOrder(context.Background(), d, order.OrderID)
	svc.ProcessOrder(context.Background(), d, order.OrderID)

	assert.Equal(t, 1, d.submits)
}

func TestDispatchClaimNoopWhenShipmentExists(t *testing.T) {
	e := newTestEnv(t)
	svc := newDispatchService(e, false)
	d := &fakeDispatcher{txHash: "0xcafe"}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_DISPATCH_ENQUEUED)
	require.NoError(t, e.repos.Shipments.Create(e.db, &domain.Shipments{
		OrderID:    order.OrderID,
		Dispatcher: domain.DISPATCHER_EVM,
		TxHash:     "0xearlier",
		Status:     domain.SHIPMENT_SENT,
	}))

	svc.ProcessOrder(context.Background(), d, order.OrderID)

	assert.Zero(t, d.submits)
	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_DISPATCH_ENQUEUED, got.Status)
}

func TestDispatchReclaimsStaleLockedShipment(t *testing.T) {
	e := newTestEnv(t)
	svc := newDispatchService(e, false)
	d := &fakeDispatcher{txHash: "0xcafe"}

	// a run that died after claiming but before submitting leaves the
	// order enqueued with a LOCKED shipment and no tx hash
	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_DISPATCH_ENQUEUED)
	require.NoError(t, e.repos.Shipments.Create(e.db, &domain.Shipments{
		OrderID:    order.OrderID,
		Dispatcher: "dispatcher-gone",
		Status:     domain.SHIPMENT_LOCKED,
	}))

	svc.ProcessOrder(context.Background(), d, order.OrderID)

	assert.Equal(t, 1, d.submits)

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILLED, got.Status)

	shipment, err := e.repos.Shipments.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.DISPATCHER_EVM, shipment.Dispatcher)
	assert.Equal(t, "0xcafe", shipment.TxHash)
	assert.Equal(t, domain.SHIPMENT_CONFIRMED, shipment.Status)
}

func TestDispatchSubmitFailureParksManual(t *testing.T) {
	e := newTestEnv(t)
	svc := newDispatchService(e, false)
	d := &fakeDispatcher{submitErr: errors.New("rpc down")}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	svc.ProcessOrder(context.Background(), d, order.OrderID)

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILL_FAILED_MANUAL, got.Status)
	assert.Contains(t, got.FailReason, "rpc down")

	shipment, err := e.repos.Shipments.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.SHIPMENT_FAILED_MANUAL, shipment.Status)
	assert.Empty(t, shipment.TxHash)
	assert.Zero(t, d.waits)
}

func TestDispatchFinalityFailureKeepsTxHash(t *testing.T) {
	e := newTestEnv(t)
	svc := newDispatchService(e, false)
	d := &fakeDispatcher{txHash: "0xcafe", waitErr: errors.New("dropped from mempool")}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	svc.ProcessOrder(context.Background(), d, order.OrderID)

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILL_FAILED_MANUAL, got.Status)

	// the submitted hash stays on the shipment for the operator
	shipment, err := e.repos.Shipments.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "0xcafe", shipment.TxHash)
	assert.Equal(t, domain.SHIPMENT_FAILED_MANUAL, shipment.Status)
}

func TestDispatchTestingModeSkipsChainIO(t *testing.T) {
	e := newTestEnv(t)
	svc := newDispatchService(e, true)
	d := &fakeDispatcher{}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	svc.ProcessOrder(context.Background(), d, order.OrderID)

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILLED, got.Status)

	shipment, err := e.repos.Shipments.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.NotEmpty(t, shipment.TxHash)
	assert.Equal(t, domain.SHIPMENT_CONFIRMED, shipment.Status)

	assert.Zero(t, d.submits)
	assert.Zero(t, d.waits)
}

func TestManualFulfillAndRetryEligibility(t *testing.T) {
	e := newTestEnv(t)
	dispatch := newDispatchService(e, false)
	admin := NewAdminService(e.db, e.repos, e.n, e.l)
	d := &fakeDispatcher{submitErr: errors.New("rpc down")}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	// not eligible while the automated flow still owns the order
	require.ErrorIs(t, admin.ManualFulfill(order.OrderID, "0xby-hand"), domain.ErrNotEligibleManual)
	require.ErrorIs(t, admin.RetryDispatch(order.OrderID), domain.ErrNotEligibleRetry)

	dispatch.ProcessOrder(context.Background(), d, order.OrderID)

	// failed order: retry drops the stale claim and re-enqueues
	require.NoError(t, admin.RetryDispatch(order.OrderID))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_DISPATCH_ENQUEUED, got.Status)
	assert.Empty(t, got.FailReason)

	_, err = e.repos.Shipments.FindByOrderID(e.db, order.OrderID)
	require.Error(t, err)

	// second attempt succeeds this time
	d.submitErr = nil
	d.txHash = "0xretry"
	dispatch.ProcessOrder(context.Background(), d, order.OrderID)

	got, err = e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILLED, got.Status)
}

func TestRetryRefusedWhenPayoutRecorded(t *testing.T) {
	e := newTestEnv(t)
	dispatch := newDispatchService(e, false)
	admin := NewAdminService(e.db, e.repos, e.n, e.l)
	d := &fakeDispatcher{txHash: "0xcafe", waitErr: errors.New("dropped from mempool")}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	dispatch.ProcessOrder(context.Background(), d, order.OrderID)

	// the payout was submitted, re-dispatching could pay twice
	require.ErrorIs(t, admin.RetryDispatch(order.OrderID), domain.ErrRetryHasTxHash)

	// manual fulfill is the recovery path once the operator verified it
	require.NoError(t, admin.ManualFulfill(order.OrderID, "0xcafe"))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILLED, got.Status)
}

func TestManualFulfillFromFailedOrder(t *testing.T) {
	e := newTestEnv(t)
	dispatch := newDispatchService(e, false)
	admin := NewAdminService(e.db, e.repos, e.n, e.l)
	d := &fakeDispatcher{submitErr: errors.New("rpc down")}

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)

	dispatch.ProcessOrder(context.Background(), d, order.OrderID)

	require.NoError(t, admin.ManualFulfill(order.OrderID, "0xby-hand"))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_FULFILLED, got.Status)
	assert.Empty(t, got.FailReason)

	shipment, err := e.repos.Shipments.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "0xby-hand", shipment.TxHash)
	assert.Equal(t, domain.SHIPMENT_SENT_MANUAL, shipment.Status)
}
