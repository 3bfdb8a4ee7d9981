package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type noopExpiry struct{}

func (noopExpiry) Schedule(orderId string, at time.Time) {}

func newOrdersService(e *testEnv, rails []PaymentRail, perMinute uint) *OrdersService {
	rateLimit := NewRateLimitService(perMinute, time.Minute)
	return NewOrdersService(e.db, e.repos, rails, rateLimit, noopExpiry{}, e.n, testMetrics, e.l, 10*time.Minute)
}

func (e *testEnv) provisionRail(t *testing.T, addresses int) PaymentRail {
	t.Helper()
	rail := PaymentRail{
		Chain:    domain.CHAIN_BSC,
		Symbol:   "TST-" + uuid.NewString()[:8],
		Contract: "0x" + uuid.NewString()[:8],
		Decimals: 6,
	}
	for i := 0; i < addresses; i++ {
		require.NoError(t, e.repos.Pool.Insert(e.db, &domain.AddressPool{
			Chain:         rail.Chain,
			TokenSymbol:   rail.Symbol,
			TokenContract: rail.Contract,
			Address:       "0x" + uuid.NewString(),
		}))
	}
	return rail
}

func createReq(product *domain.Products) *domain.RequestCreateOrder {
	return &domain.RequestCreateOrder{
		ProductID:          product.ProductID,
		Quantity:           2,
		FulfillmentAddress: "0x52908400098527886e0f7030069857d2e4169ee7",
	}
}

func TestCreateOrderAllocatesAddress(t *testing.T) {
	e := newTestEnv(t)
	rail := e.provisionRail(t, 1)
	svc := newOrdersService(e, []PaymentRail{rail}, 100)
	product := e.createProduct(t, domain.KIND_EVM)

	info, err := svc.Create(createReq(product), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, domain.STATUS_PENDING_PAYMENT.ToString(), info.Status)
	assert.Equal(t, "1", info.TotalPriceUsd) // 0.50 x 2
	require.Len(t, info.PaymentOptions, 1)
	assert.Equal(t, "1000000", info.PaymentOptions[0].ExpectedRawAmount)
	assert.Equal(t, rail.Symbol, info.PaymentOptions[0].TokenSymbol)

	// the handed-out address is no longer free
	free, err := e.repos.Pool.CountFree(e.db, rail.Chain, rail.Symbol)
	require.NoError(t, err)
	assert.Zero(t, free)

	assert.Equal(t, []string{domain.EVENT_ORDER_CREATED}, e.eventTypes(t, info.OrderID))
}

func TestCreateOrderPoolExhausted(t *testing.T) {
	e := newTestEnv(t)
	rail := e.provisionRail(t, 1)
	svc := newOrdersService(e, []PaymentRail{rail}, 100)
	product := e.createProduct(t, domain.KIND_EVM)

	_, err := svc.Create(createReq(product), "10.0.0.2")
	require.NoError(t, err)

	_, err = svc.Create(createReq(product), "10.0.0.3")
	require.ErrorIs(t, err, domain.ErrPoolExhausted)
}

func TestCreateOrderValidation(t *testing.T) {
	e := newTestEnv(t)
	rail := e.provisionRail(t, 4)
	svc := newOrdersService(e, []PaymentRail{rail}, 100)

	product := e.createProduct(t, domain.KIND_EVM)
	product.MinPurchaseQty = 2
	product.QuantityStep = 2
	require.NoError(t, e.repos.Products.Update(e.db, product))

	req := createReq(product)
	req.Quantity = 1 // below min
	_, err := svc.Create(req, "10.0.1.1")
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = createReq(product)
	req.Quantity = 3 // off step
	_, err = svc.Create(req, "10.0.1.2")
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = createReq(product)
	req.FulfillmentAddress = "not-an-address"
	_, err = svc.Create(req, "10.0.1.3")
	require.ErrorIs(t, err, domain.ErrInvalidAddress)

	req = createReq(product)
	req.Cluster = domain.CLUSTER_DEVNET // product does not take a cluster
	_, err = svc.Create(req, "10.0.1.4")
	require.ErrorIs(t, err, domain.ErrClusterNotAllowed)

	product.Enabled = false
	require.NoError(t, e.repos.Products.Update(e.db, product))
	_, err = svc.Create(createReq(product), "10.0.1.5")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateOrderClusterRequired(t *testing.T) {
	e := newTestEnv(t)
	rail := e.provisionRail(t, 2)
	svc := newOrdersService(e, []PaymentRail{rail}, 100)

	product := e.createProduct(t, domain.KIND_SOLANA)
	product.RequiresCluster = true
	require.NoError(t, e.repos.Products.Update(e.db, product))

	req := createReq(product)
	req.FulfillmentAddress = "4Nd1mYvM4nFqe4eTanzMvFgr8UVSMjZyoMv2jZoPUmaj"
	_, err := svc.Create(req, "10.0.2.1")
	require.ErrorIs(t, err, domain.ErrClusterRequired)

	req.Cluster = domain.CLUSTER_DEVNET
	info, err := svc.Create(req, "10.0.2.2")
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PENDING_PAYMENT.ToString(), info.Status)
}

func TestCreateOrderRateLimited(t *testing.T) {
	e := newTestEnv(t)
	rail := e.provisionRail(t, 3)
	svc := newOrdersService(e, []PaymentRail{rail}, 1)
	product := e.createProduct(t, domain.KIND_EVM)

	ip := "10.0.3." + uuid.NewString()[:2]
	_, err := svc.Create(createReq(product), ip)
	require.NoError(t, err)

	_, err = svc.Create(createReq(product), ip)
	require.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestGetOrderRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	rail := e.provisionRail(t, 1)
	svc := newOrdersService(e, []PaymentRail{rail}, 100)
	product := e.createProduct(t, domain.KIND_EVM)

	created, err := svc.Create(createReq(product), "10.0.4.1")
	require.NoError(t, err)

	got, err := svc.Get(created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, created.OrderID, got.OrderID)
	assert.Equal(t, created.PaymentOptions, got.PaymentOptions)

	_, err = svc.Get("not-a-uuid")
	require.ErrorIs(t, err, domain.ErrInvalidOrderId)

	_, err = svc.Get(uuid.NewString())
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}
