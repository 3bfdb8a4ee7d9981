package repository

import (
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type ShipmentsRepo struct {
}

func InitShipmentsRepo() *ShipmentsRepo {
	return &ShipmentsRepo{}
}

func (r *ShipmentsRepo) Create(tx *gorm.DB, shipment *domain.Shipments) error {
	return tx.Create(shipment).Error
}

func (r *ShipmentsRepo) Update(tx *gorm.DB, shipment *domain.Shipments) error {
	return tx.Save(shipment).Error
}

func (r *ShipmentsRepo) FindByOrderID(tx *gorm.DB, orderId string) (*domain.Shipments, error) {
	var shipment domain.Shipments
	return &shipment, tx.Where(&domain.Shipments{OrderID: orderId}).First(&shipment).Error
}

func (r *ShipmentsRepo) DeleteByOrderID(tx *gorm.DB, orderId string) error {
	return tx.Where("order_id = ?", orderId).Delete(&domain.Shipments{}).Error
}
