package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// KOT is a kitchen order ticket created from one order's undispatched lines.
// Its aggregate Status is derived from the item statuses.
type KOT struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID  uuid.UUID       `gorm:"column:branch_id;type:uuid;not null"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	OrderRef  string          `gorm:"column:order_ref;not null"`
	Status    enums.KOTStatus `gorm:"column:status;not null;default:'New'"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Branch *Branch   `gorm:"foreignKey:BranchID"`
	Order  *POSOrder `gorm:"foreignKey:OrderID"`
	Items  []KOTItem `gorm:"foreignKey:KOTID"`
}
