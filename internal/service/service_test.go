package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

// promauto registers against the default registry, so one instance for
// the whole test binary
var testMetrics = metrics.New()

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	n     *nats.NatsInfra
	l     logger.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := postgres.InitTest(postgres.TEST_CONFIG)
	if err != nil {
		t.Skip("test postgres not available:", err)
	}
	return &testEnv{
		db:    db,
		repos: repository.New(),
		n:     &nats.NatsInfra{},
	}
}

func (e *testEnv) createProduct(t *testing.T, kind domain.FulfillmentKind) *domain.Products {
	t.Helper()
	product := &domain.Products{
		ProductID:       "prod-" + uuid.NewString()[:8],
		Title:           "coupon",
		PriceUsd:        "0.50",
		MinPurchaseQty:  1,
		QuantityStep:    1,
		Enabled:         true,
		FulfillmentKind: kind,
	}
	require.NoError(t, e.repos.Products.Create(e.db, product))
	return product
}

func (e *testEnv) createOrder(t *testing.T, product *domain.Products, status domain.Status) *domain.Orders {
	t.Helper()
	order := &domain.Orders{
		OrderID:            uuid.NewString(),
		ProductID:          product.ProductID,
		Quantity:           1,
		Status:             status,
		FulfillmentKind:    product.FulfillmentKind,
		FulfillmentAddress: "0x52908400098527886e0f7030069857d2e4169ee7",
	}
	require.NoError(t, e.repos.Orders.Create(e.db, order))
	return order
}

func (e *testEnv) createPaymentAddress(t *testing.T, orderId string, expectedRaw string) *domain.PaymentAddresses {
	t.Helper()
	addr := &domain.PaymentAddresses{
		OrderID:           orderId,
		Chain:             domain.CHAIN_BSC,
		TokenSymbol:       "USDT",
		TokenContract:     "0x" + uuid.NewString()[:8], // unique per test
		Address:           "0x" + uuid.NewString(),
		ExpectedRawAmount: expectedRaw,
	}
	require.NoError(t, e.repos.PaymentAddresses.Create(e.db, addr))
	return addr
}

func (e *testEnv) eventTypes(t *testing.T, orderId string) []string {
	t.Helper()
	events, err := e.repos.Events.ListByOrder(e.db, orderId)
	require.NoError(t, err)
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.EventType)
	}
	return out
}
