package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// POSOrderItem is one line of a POS order. Amount is always Qty * Rate; a line
// with SentToKitchen set can no longer be edited or re-dispatched.
type POSOrderItem struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID                `gorm:"column:order_id;type:uuid;not null"`
	ItemCode      string                   `gorm:"column:item_code;not null"`
	ItemName      string                   `gorm:"column:item_name;not null"`
	Qty           int                      `gorm:"column:qty;not null"`
	Rate          decimal.Decimal          `gorm:"column:rate;type:numeric(12,2);not null"`
	Amount        decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	Note          *string                  `gorm:"column:note"`
	Attributes    json.RawMessage          `gorm:"column:attributes;type:jsonb"`
	SentToKitchen bool                     `gorm:"column:sent_to_kitchen;not null;default:false"`
	Cancelled     bool                     `gorm:"column:cancelled;not null;default:false"`
	CancelReason  *string                  `gorm:"column:cancel_reason"`
	KOTID         *uuid.UUID               `gorm:"column:kot_id;type:uuid"`
	KitchenStatus *enums.KitchenItemStatus `gorm:"column:kitchen_status"`
	KitchenUpdate *time.Time               `gorm:"column:kitchen_update"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// DispatchEligible reports whether the line may be included in a new KOT.
func (i POSOrderItem) DispatchEligible() bool {
	return !i.SentToKitchen && !i.Cancelled
}
