package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := postgres.InitTest(postgres.TEST_CONFIG)
	if err != nil {
		t.Skip("test postgres not available:", err)
	}
	return db
}

func TestCursorNeverMovesBackwards(t *testing.T) {
	db := testDB(t)
	r := InitCursorsRepo()
	key := "cursor-test-" + uuid.NewString()

	require.NoError(t, r.Put(db, domain.CHAIN_BSC, key, 100, domain.CURSOR_UNIT_BLOCK))

	cursor, err := r.Get(db, domain.CHAIN_BSC, key)
	require.NoError(t, err)
	require.Equal(t, uint64(100), cursor.Position)

	// lower position is ignored
	require.NoError(t, r.Put(db, domain.CHAIN_BSC, key, 50, domain.CURSOR_UNIT_BLOCK))
	cursor, err = r.Get(db, domain.CHAIN_BSC, key)
	require.NoError(t, err)
	require.Equal(t, uint64(100), cursor.Position)

	require.NoError(t, r.Put(db, domain.CHAIN_BSC, key, 150, domain.CURSOR_UNIT_BLOCK))
	cursor, err = r.Get(db, domain.CHAIN_BSC, key)
	require.NoError(t, err)
	require.Equal(t, uint64(150), cursor.Position)
}

func TestPoolAcquireOldestFree(t *testing.T) {
	db := testDB(t)
	r := InitPoolRepo()
	symbol := "TST-" + uuid.NewString()[:8]

	first := &domain.AddressPool{Chain: domain.CHAIN_SOL, TokenSymbol: symbol, Address: uuid.NewString()}
	second := &domain.AddressPool{Chain: domain.CHAIN_SOL, TokenSymbol: symbol, Address: uuid.NewString()}
	require.NoError(t, r.Insert(db, first))
	require.NoError(t, r.Insert(db, second))

	err := db.Transaction(func(tx *gorm.DB) error {
		entry, err := r.AcquireForUpdate(tx, domain.CHAIN_SOL, symbol)
		require.NoError(t, err)
		require.Equal(t, first.Address, entry.Address)

		entry.InUse = true
		return r.Update(tx, entry)
	})
	require.NoError(t, err)

	got, err := r.AcquireForUpdate(db, domain.CHAIN_SOL, symbol)
	require.NoError(t, err)
	require.Equal(t, second.Address, got.Address)

	require.NoError(t, r.Release(db, first.Address))
	free, err := r.CountFree(db, domain.CHAIN_SOL, symbol)
	require.NoError(t, err)
	require.Equal(t, int64(2), free)
}

func TestPaymentsTxHashUnique(t *testing.T) {
	db := testDB(t)
	r := InitPaymentsRepo()
	txHash := "0x" + uuid.NewString()

	payment := &domain.Payments{OrderID: uuid.NewString(), Chain: domain.CHAIN_BASE, TxHash: txHash, RawAmount: "1"}
	require.NoError(t, r.Create(db, payment))

	dup := &domain.Payments{OrderID: payment.OrderID, Chain: domain.CHAIN_BASE, TxHash: txHash, RawAmount: "1"}
	require.Error(t, r.Create(db, dup))

	found, err := r.FindByTxHash(db, txHash)
	require.NoError(t, err)
	require.Equal(t, payment.OrderID, found.OrderID)
}

func TestEventsAppendOnlyOrdered(t *testing.T) {
	db := testDB(t)
	r := InitEventsRepo()
	orderId := uuid.NewString()

	require.NoError(t, r.Append(db, orderId, domain.EVENT_ORDER_CREATED, domain.PayloadOrderCreated{Quantity: 2}))
	require.NoError(t, r.Append(db, orderId, domain.EVENT_PAYMENT_DETECTED, domain.PayloadPayment{TxHash: "0xabc", Chain: "BSC"}))

	events, err := r.ListByOrder(db, orderId)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.EVENT_ORDER_CREATED, events[0].EventType)
	require.Equal(t, domain.EVENT_PAYMENT_DETECTED, events[1].EventType)
}
