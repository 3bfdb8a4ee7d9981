package repository

import (
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
)

type CursorsRepo struct {
}

func InitCursorsRepo() *CursorsRepo {
	return &CursorsRepo{}
}

func (r *CursorsRepo) Get(tx *gorm.DB, chain domain.Chain, scanKey string) (*domain.WatcherCursors, error) {
	var cursor domain.WatcherCursors
	return &cursor, tx.Where("chain = ? AND scan_key = ?", int(chain), scanKey).First(&cursor).Error
}

func (r *CursorsRepo) Put(tx *gorm.DB, chain domain.Chain, scanKey string, position uint64, unit string) error {
	res := tx.Model(&domain.WatcherCursors{}).
		Where("chain = ? AND scan_key = ? AND position < ?", int(chain), scanKey, position).
		Update("position", position)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// either the row is missing or the stored position is already ahead
	_, err := r.Get(tx, chain, scanKey)
	if postgres.IsNotFound(err) {
		return tx.Create(&domain.WatcherCursors{Chain: chain, ScanKey: scanKey, Position: position, Unit: unit}).Error
	}
	return err
}
