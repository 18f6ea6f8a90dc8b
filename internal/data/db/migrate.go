package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yashpatel08/railsathi/internal/domain"
)

// AutoMigrateAll creates or updates every table the service touches. The
// reference tables (trains, staff, lineage) are normally owned by another
// system; migrating them is only needed for fresh databases.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
