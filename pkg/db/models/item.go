package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a sellable menu item. Templates (HasVariants) cannot be sold
// directly; they resolve to a concrete variant through attribute selection.
type Item struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string          `gorm:"column:code;uniqueIndex;not null"`
	Name         string          `gorm:"column:name;not null"`
	HasVariants  bool            `gorm:"column:has_variants;not null;default:false"`
	VariantOf    *string         `gorm:"column:variant_of"`
	StandardRate decimal.Decimal `gorm:"column:standard_rate;type:numeric(12,2);not null;default:0"`
	Disabled     bool            `gorm:"column:disabled;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemAttribute is a selectable attribute (e.g. Size, Spice Level).
type ItemAttribute struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;uniqueIndex;not null"`

	Values []ItemAttributeValue `gorm:"foreignKey:AttributeID"`
}

// ItemAttributeValue is one allowed value of an attribute.
type ItemAttributeValue struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AttributeID uuid.UUID `gorm:"column:attribute_id;type:uuid;not null"`
	Value       string    `gorm:"column:value;not null"`
}

// ItemVariantAttribute pins a concrete variant to one attribute value, and,
// for templates, declares which attributes a variant must resolve.
type ItemVariantAttribute struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemCode  string    `gorm:"column:item_code;index;not null"`
	Attribute string    `gorm:"column:attribute;not null"`
	Value     string    `gorm:"column:value;not null"`
}

// ItemPrice is a per-price-list rate for an item.
type ItemPrice struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemCode  string          `gorm:"column:item_code;index;not null"`
	PriceList string          `gorm:"column:price_list;not null"`
	Rate      decimal.Decimal `gorm:"column:rate;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
