// Package persistence provides database storage implementations.
package persistence

import (
	"fmt"

	"github.com/helixml/autocommit/internal/database"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(&AttemptModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
