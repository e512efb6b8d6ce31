package variants

import (
	"github.com/shopspring/decimal"
)

// AttributeOption lists the allowed values for one template attribute.
type AttributeOption struct {
	Attribute string   `json:"attribute"`
	Values    []string `json:"values"`
}

// ResolveInput selects a concrete variant of a template item.
type ResolveInput struct {
	TemplateCode string            `json:"templateCode"`
	Attributes   map[string]string `json:"attributes"`
}

// ResolvedVariant is the sellable item produced by attribute selection.
type ResolvedVariant struct {
	ItemCode    string          `json:"itemCode"`
	ItemName    string          `json:"itemName"`
	Rate        decimal.Decimal `json:"rate"`
	PriceWarned bool            `json:"priceWarned"`
}

// PriceResult carries the rate lookup outcome. Warned is set when neither the
// price list nor the item's standard rate produced a price.
type PriceResult struct {
	ItemCode  string          `json:"itemCode"`
	PriceList string          `json:"priceList"`
	Rate      decimal.Decimal `json:"rate"`
	Warned    bool            `json:"warned"`
}
