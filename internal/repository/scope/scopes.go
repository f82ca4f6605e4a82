// Package scope holds small reusable gorm query scopes shared across the
// repository implementations.
package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// ExcludeSoftDelete makes the soft-delete filter explicit on queries that
// bypass the model-level hooks, e.g. raw full-text searches.
func ExcludeSoftDelete(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}
