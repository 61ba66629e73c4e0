package memorial

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate applies the memorial schema using Gorm's AutoMigrate and logs progress.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "memorial.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying memorial schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Memorial{}, &Photo{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("memorial schema migration failed")
		}
		return eris.Wrap(err, "auto migrating memorial schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("memorial schema migration complete")
	}

	return nil
}
