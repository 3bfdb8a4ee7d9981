package repository

import (
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type PaymentAddressesRepo struct {
}

func InitPaymentAddressesRepo() *PaymentAddressesRepo {
	return &PaymentAddressesRepo{}
}

func (r *PaymentAddressesRepo) Create(tx *gorm.DB, addr *domain.PaymentAddresses) error {
	return tx.Create(addr).Error
}

func (r *PaymentAddressesRepo) ListByOrder(tx *gorm.DB, orderId string) ([]domain.PaymentAddresses, error) {
	var addrs []domain.PaymentAddresses
	return addrs, tx.Where(&domain.PaymentAddresses{OrderID: orderId}).Find(&addrs).Error
}

func (r *PaymentAddressesRepo) ListAwaited(tx *gorm.DB, chain domain.Chain) ([]domain.PaymentAddresses, error) {
	var addrs []domain.PaymentAddresses
	return addrs, tx.
		Joins("JOIN orders ON orders.order_id = payment_addresses.order_id").
		Where("payment_addresses.chain = ?", int(chain)).
		Where("orders.status IN ?", statusInts(domain.WatchedStatuses)).
		Find(&addrs).Error
}

func (r *PaymentAddressesRepo) FindMatch(tx *gorm.DB, chain domain.Chain, tokenContract, toAddress string) (*domain.PaymentAddresses, error) {
	var addr domain.PaymentAddresses
	q := tx.Where("chain = ?", int(chain))
	if chain.IsEvm() {
		// evm addresses are stored canonical lowercase, observed values
		// may carry mixed-case checksums
		q = q.Where("LOWER(token_contract) = LOWER(?) AND LOWER(address) = LOWER(?)", tokenContract, toAddress)
	} else {
		q = q.Where("token_contract = ? AND address = ?", tokenContract, toAddress)
	}
	return &addr, q.First(&addr).Error
}
