package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type OrdersRepo struct {
}

func InitOrdersRepo() *OrdersRepo {
	return &OrdersRepo{}
}

func (r *OrdersRepo) Create(tx *gorm.DB, order *domain.Orders) error {
	return tx.Create(order).Error
}

func (r *OrdersRepo) Update(tx *gorm.DB, order *domain.Orders) error {
	return tx.Save(order).Error
}

func (r *OrdersRepo) FindByOrderID(tx *gorm.DB, orderId string) (*domain.Orders, error) {
	var order domain.Orders
	return &order, tx.Where(&domain.Orders{OrderID: orderId}).First(&order).Error
}

func (r *OrdersRepo) FindByOrderIDForUpdate(tx *gorm.DB, orderId string) (*domain.Orders, error) {
	var order domain.Orders
	return &order, tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&domain.Orders{OrderID: orderId}).First(&order).Error
}

func (r *OrdersRepo) ListDispatchable(tx *gorm.DB, kind domain.FulfillmentKind, limit int) ([]domain.Orders, error) {
	var orders []domain.Orders
	return orders, tx.
		Where("fulfillment_kind = ?", int(kind)).
		Where("status IN ?", statusInts(domain.DispatchableStatuses)).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
}

func (r *OrdersRepo) ListExpiryCandidates(tx *gorm.DB, now time.Time, limit int) ([]domain.Orders, error) {
	var orders []domain.Orders
	return orders, tx.
		Where("status IN ?", statusInts([]domain.Status{domain.STATUS_PENDING_PAYMENT, domain.STATUS_PAYMENT_DETECTED})).
		Where("expires_at < ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&orders).Error
}

func (r *OrdersRepo) ListByStatuses(tx *gorm.DB, statuses []domain.Status) ([]domain.Orders, error) {
	var orders []domain.Orders
	return orders, tx.
		Where("status IN ?", statusInts(statuses)).
		Order("created_at ASC").
		Find(&orders).Error
}

func (r *OrdersRepo) ListFlagged(tx *gorm.DB) ([]domain.Orders, error) {
	var orders []domain.Orders
	return orders, tx.
		Where("extra_payment_flag = ? OR late_payment_flag = ?", true, true).
		Order("updated_at DESC").
		Find(&orders).Error
}
