package variants

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a variants repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItemByCode(ctx context.Context, code string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListVariantsOf(ctx context.Context, templateCode string) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("variant_of = ? AND disabled = ?", templateCode, false).
		Order("code ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListVariantAttributes(ctx context.Context, itemCodes []string) ([]models.ItemVariantAttribute, error) {
	if len(itemCodes) == 0 {
		return nil, nil
	}
	var rows []models.ItemVariantAttribute
	err := r.db.WithContext(ctx).
		Where("item_code IN ?", itemCodes).
		Order("item_code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListAttributeValues(ctx context.Context, attributeName string) ([]string, error) {
	var attribute models.ItemAttribute
	err := r.db.WithContext(ctx).
		Preload("Values").
		Where("name = ?", attributeName).
		First(&attribute).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	values := make([]string, 0, len(attribute.Values))
	for _, v := range attribute.Values {
		values = append(values, v.Value)
	}
	return values, nil
}

func (r *repository) FindPrice(ctx context.Context, itemCode, priceList string) (*models.ItemPrice, error) {
	var price models.ItemPrice
	err := r.db.WithContext(ctx).
		Where("item_code = ? AND price_list = ?", itemCode, priceList).
		First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}
