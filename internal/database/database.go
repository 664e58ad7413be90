package database

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codearena/arena/internal/database/models"
)

func Init(dsn string) (*gorm.DB, error) {
	if _, err := os.Stat(dsn); os.IsNotExist(err) {
		zap.S().Infof("database file not found at '%s', creating directory for it.", dsn)
		dbDir := filepath.Dir(dsn)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, err
		}
	}

	// TranslateError turns driver-level unique violations into
	// gorm.ErrDuplicatedKey, which the store maps to domain errors.
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Contest{},
		&models.Participant{},
		&models.Submission{},
		&models.Ranking{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
