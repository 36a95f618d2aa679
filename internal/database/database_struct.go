package database

import "gorm.io/gorm"

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// withReadRetry retries an idempotent read once on failure. Writes are never
// retried here; a duplicated write is worse than a surfaced error.
func withReadRetry(op func() error) error {
	err := op()
	if err == nil || err == gorm.ErrRecordNotFound {
		return err
	}
	return op()
}
