package variants

import (
	"context"

	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
)

// Repository defines persistence operations for menu items and variants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItemByCode(ctx context.Context, code string) (*models.Item, error)
	ListVariantsOf(ctx context.Context, templateCode string) ([]models.Item, error)
	ListVariantAttributes(ctx context.Context, itemCodes []string) ([]models.ItemVariantAttribute, error)
	ListAttributeValues(ctx context.Context, attributeName string) ([]string, error)
	FindPrice(ctx context.Context, itemCode, priceList string) (*models.ItemPrice, error)
}
