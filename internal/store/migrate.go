package store

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate creates or updates the store tables.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("db is required")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Product{}, &Order{}); err != nil {
		return eris.Wrap(err, "migrating store tables")
	}

	if logger != nil {
		logger.Debug("store migrations applied")
	}

	return nil
}
