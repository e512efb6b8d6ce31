package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// POSOrder is a restaurant order. OrderID is the human-readable identifier
// generated per branch and day ({BRANCHCODE}-{YYYYMMDD}-{seq}).
type POSOrder struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      string            `gorm:"column:order_id;uniqueIndex;not null"`
	BranchID     uuid.UUID         `gorm:"column:branch_id;type:uuid;not null"`
	TableID      *uuid.UUID        `gorm:"column:table_id;type:uuid"`
	CustomerName *string           `gorm:"column:customer_name"`
	WaiterUser   string            `gorm:"column:waiter_user;not null"`
	Status       enums.OrderStatus `gorm:"column:status;not null;default:'Draft'"`
	Total        decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	FinalBilled  bool              `gorm:"column:final_billed;not null;default:false"`
	CancelReason *string           `gorm:"column:cancel_reason"`
	OrderedAt    time.Time         `gorm:"column:ordered_at;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Branch *Branch        `gorm:"foreignKey:BranchID"`
	Table  *POSTable      `gorm:"foreignKey:TableID"`
	Items  []POSOrderItem `gorm:"foreignKey:OrderID"`
}
