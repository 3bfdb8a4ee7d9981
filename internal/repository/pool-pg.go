package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type PoolRepo struct {
}

func InitPoolRepo() *PoolRepo {
	return &PoolRepo{}
}

func (r *PoolRepo) Insert(tx *gorm.DB, entry *domain.AddressPool) error {
	return tx.Create(entry).Error
}

func (r *PoolRepo) Update(tx *gorm.DB, entry *domain.AddressPool) error {
	return tx.Save(entry).Error
}

func (r *PoolRepo) AcquireForUpdate(tx *gorm.DB, chain domain.Chain, tokenSymbol string) (*domain.AddressPool, error) {
	var entry domain.AddressPool
	return &entry, tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("chain = ? AND token_symbol = ? AND in_use = ?", int(chain), tokenSymbol, false).
		Order("created_at ASC").
		First(&entry).Error
}

func (r *PoolRepo) Release(tx *gorm.DB, address string) error {
	return tx.Model(&domain.AddressPool{}).
		Where("address = ?", address).
		Update("in_use", false).Error
}

func (r *PoolRepo) CountFree(tx *gorm.DB, chain domain.Chain, tokenSymbol string) (int64, error) {
	var count int64
	return count, tx.Model(&domain.AddressPool{}).
		Where("chain = ? AND token_symbol = ? AND in_use = ?", int(chain), tokenSymbol, false).
		Count(&count).Error
}
