// Package specification expresses repository query filters as small
// composable values, keeping SQL fragments out of the service layer.
package specification

import "gorm.io/gorm"

type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
