package migration

import (
	"context"

	"github.com/questforge-lab/backend/internal/entity"
	"github.com/questforge-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

var migrators = []func(context.Context) error{
	migrate0000,
}

// Migrate brings the archive database to the latest schema version. A fresh
// database gets the full schema in one step; an existing one only runs the
// versions it has not recorded yet.
func Migrate(ctx context.Context) error {
	db := xcontext.DB(ctx)
	if !db.Migrator().HasTable(&entity.Migration{}) {
		if err := db.AutoMigrate(&entity.Migration{}); err != nil {
			return err
		}
	}

	current := -1
	var latest entity.Migration
	err := db.Order("version DESC").Take(&latest).Error
	switch err {
	case nil:
		current = latest.Version
	case gorm.ErrRecordNotFound:
	default:
		return err
	}

	for version := current + 1; version < len(migrators); version++ {
		if err := migrators[version](ctx); err != nil {
			return err
		}

		if err := db.Create(&entity.Migration{Version: version}).Error; err != nil {
			return err
		}
	}

	return nil
}
