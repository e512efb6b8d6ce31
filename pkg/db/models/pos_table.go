package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// POSTable is a seatable table inside a branch. Availability for new orders is
// derived from open orders referencing the table, not from Status alone.
type POSTable struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID    uuid.UUID         `gorm:"column:branch_id;type:uuid;not null"`
	TableNumber string            `gorm:"column:table_number;not null"`
	Section     *string           `gorm:"column:section"`
	Capacity    int               `gorm:"column:capacity;not null;default:2"`
	Status      enums.TableStatus `gorm:"column:status;not null;default:'Available'"`
	Disabled    bool              `gorm:"column:disabled;not null;default:false"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Branch *Branch `gorm:"foreignKey:BranchID"`
}
