package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates the relational schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Corpus{}, &Document{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
