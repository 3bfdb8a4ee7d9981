package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

func newExpiryService(e *testEnv) *ExpiryService {
	return NewExpiryService(e.db, e.repos, e.n, testMetrics, e.l, time.Minute)
}

func TestExpireOverdueOrder(t *testing.T) {
	e := newTestEnv(t)
	svc := newExpiryService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	order.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, e.repos.Orders.Update(e.db, order))

	require.NoError(t, svc.Expire(order.OrderID))

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_EXPIRED, got.Status)
	assert.Equal(t, []string{domain.EVENT_ORDER_EXPIRED}, e.eventTypes(t, order.OrderID))
}

func TestExpireIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	svc := newExpiryService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PAYMENT_DETECTED)
	order.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, e.repos.Orders.Update(e.db, order))

	// timer and sweep can both fire, only one event must land
	require.NoError(t, svc.Expire(order.OrderID))
	require.NoError(t, svc.Expire(order.OrderID))

	assert.Equal(t, []string{domain.EVENT_ORDER_EXPIRED}, e.eventTypes(t, order.OrderID))
}

func TestExpireSkipsPaidAndFutureOrders(t *testing.T) {
	e := newTestEnv(t)
	svc := newExpiryService(e)
	product := e.createProduct(t, domain.KIND_EVM)

	paid := e.createOrder(t, product, domain.STATUS_PAYMENT_CONFIRMED)
	paid.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, e.repos.Orders.Update(e.db, paid))

	fresh := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	fresh.ExpiresAt = time.Now().Add(time.Hour)
	require.NoError(t, e.repos.Orders.Update(e.db, fresh))

	require.NoError(t, svc.Expire(paid.OrderID))
	require.NoError(t, svc.Expire(fresh.OrderID))

	got, err := e.repos.Orders.FindByOrderID(e.db, paid.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PAYMENT_CONFIRMED, got.Status)

	got, err = e.repos.Orders.FindByOrderID(e.db, fresh.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_PENDING_PAYMENT, got.Status)
}

func TestSweepCatchesOverdueOrders(t *testing.T) {
	e := newTestEnv(t)
	svc := newExpiryService(e)

	product := e.createProduct(t, domain.KIND_EVM)
	order := e.createOrder(t, product, domain.STATUS_PENDING_PAYMENT)
	order.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, e.repos.Orders.Update(e.db, order))

	svc.Sweep()

	got, err := e.repos.Orders.FindByOrderID(e.db, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.STATUS_EXPIRED, got.Status)
}
