package kitchen

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a kitchen repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateKOT(ctx context.Context, kot *models.KOT) (*models.KOT, error) {
	if err := r.db.WithContext(ctx).Create(kot).Error; err != nil {
		return nil, err
	}
	return kot, nil
}

func (r *repository) CreateKOTItems(ctx context.Context, items []models.KOTItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindKOT(ctx context.Context, id uuid.UUID) (*models.KOT, error) {
	var kot models.KOT
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&kot).Error
	if err != nil {
		return nil, err
	}
	return &kot, nil
}

func (r *repository) FindKOTForUpdate(ctx context.Context, id uuid.UUID) (*models.KOT, error) {
	var kot models.KOT
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&kot).Error
	if err != nil {
		return nil, err
	}
	return &kot, nil
}

func (r *repository) FindKOTItem(ctx context.Context, id uuid.UUID) (*models.KOTItem, error) {
	var item models.KOTItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindKOTItems(ctx context.Context, kotID uuid.UUID) ([]models.KOTItem, error) {
	var items []models.KOTItem
	err := r.db.WithContext(ctx).
		Where("kot_id = ?", kotID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateKOT(ctx context.Context, kotID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.KOT{}).
		Where("id = ?", kotID).
		Updates(updates).Error
}

func (r *repository) UpdateKOTItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.KOTItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repository) FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.POSOrder, error) {
	var order models.POSOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.POSOrderItem, error) {
	var items []models.POSOrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.POSOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpdateOrderItems(ctx context.Context, lineIDs []uuid.UUID, updates map[string]any) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.POSOrderItem{}).
		Where("id IN ?", lineIDs).
		Updates(updates).Error
}

func (r *repository) ListActiveKOTs(ctx context.Context, branchID uuid.UUID, statuses []enums.KOTStatus) ([]models.KOT, error) {
	var rows []models.KOT
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Order").
		Preload("Order.Table").
		Where("branch_id = ? AND status IN ?", branchID, statuses).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
