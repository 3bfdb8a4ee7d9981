package repository

import (
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type PaymentsRepo struct {
}

func InitPaymentsRepo() *PaymentsRepo {
	return &PaymentsRepo{}
}

func (r *PaymentsRepo) Create(tx *gorm.DB, payment *domain.Payments) error {
	return tx.Create(payment).Error
}

func (r *PaymentsRepo) Update(tx *gorm.DB, payment *domain.Payments) error {
	return tx.Save(payment).Error
}

func (r *PaymentsRepo) FindByTxHash(tx *gorm.DB, txHash string) (*domain.Payments, error) {
	var payment domain.Payments
	return &payment, tx.Where(&domain.Payments{TxHash: txHash}).First(&payment).Error
}

func (r *PaymentsRepo) CountByOrder(tx *gorm.DB, orderId string) (int64, error) {
	var count int64
	return count, tx.Model(&domain.Payments{}).
		Where("order_id = ?", orderId).
		Count(&count).Error
}

func (r *PaymentsRepo) ListByOrderNewestFirst(tx *gorm.DB, orderId string) ([]domain.Payments, error) {
	var payments []domain.Payments
	return payments, tx.Where("order_id = ?", orderId).
		Order("id DESC").
		Find(&payments).Error
}

func (r *PaymentsRepo) ListUnconfirmed(tx *gorm.DB, chain domain.Chain) ([]domain.Payments, error) {
	var payments []domain.Payments
	return payments, tx.
		Where("chain = ? AND confirmed_at IS NULL", int(chain)).
		Find(&payments).Error
}
