package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Serializable runs fn inside a serializable transaction. Concurrent
// writers touching the same order rows will fail and the caller is
// expected to retry or drop the observation.
func Serializable(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
