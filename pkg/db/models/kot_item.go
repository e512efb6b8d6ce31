package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// KOTItem is the kitchen-facing copy of one dispatched order line.
type KOTItem struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	KOTID        uuid.UUID               `gorm:"column:kot_id;type:uuid;not null"`
	OrderItemID  uuid.UUID               `gorm:"column:order_item_id;type:uuid;not null"`
	ItemCode     string                  `gorm:"column:item_code;not null"`
	ItemName     string                  `gorm:"column:item_name;not null"`
	Qty          int                     `gorm:"column:qty;not null"`
	Note         *string                 `gorm:"column:note"`
	Attributes   json.RawMessage         `gorm:"column:attributes;type:jsonb"`
	Status       enums.KitchenItemStatus `gorm:"column:status;not null;default:'Queued'"`
	CancelReason *string                 `gorm:"column:cancel_reason"`
	LastUpdate   time.Time               `gorm:"column:last_update;not null"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
