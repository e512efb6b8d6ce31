package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	"github.com/itbpos/restaurant-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.POSOrder) (*models.POSOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.POSOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.POSOrder, error) {
	var order models.POSOrder
	err := r.db.WithContext(ctx).
		Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
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

func (r *repository) FindOrderItem(ctx context.Context, lineID uuid.UUID) (*models.POSOrderItem, error) {
	var item models.POSOrderItem
	err := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
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

func (r *repository) FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repository) FindTable(ctx context.Context, id uuid.UUID) (*models.POSTable, error) {
	var table models.POSTable
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) FindOpenOrderForTable(ctx context.Context, tableID uuid.UUID) (*models.POSOrder, error) {
	var order models.POSOrder
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND status IN ?", tableID, enums.OpenOrderStatuses()).
		Order("ordered_at ASC").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) CountOrdersForBranchBetween(ctx context.Context, branchID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.POSOrder{}).
		Where("branch_id = ? AND ordered_at >= ? AND ordered_at < ?", branchID, from, to).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.POSOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpdateOrderItem(ctx context.Context, lineID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.POSOrderItem{}).
		Where("id = ?", lineID).
		Updates(updates).Error
}

func (r *repository) UpdateOrderItemsKitchenStatus(ctx context.Context, lineIDs []uuid.UUID, status enums.KitchenItemStatus, at time.Time) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.POSOrderItem{}).
		Where("id IN ?", lineIDs).
		Updates(map[string]any{
			"kitchen_status": status,
			"kitchen_update": at,
		}).Error
}

func (r *repository) FindKOTItemsForOrderItems(ctx context.Context, orderItemIDs []uuid.UUID) ([]models.KOTItem, error) {
	if len(orderItemIDs) == 0 {
		return nil, nil
	}
	var items []models.KOTItem
	err := r.db.WithContext(ctx).
		Where("order_item_id IN ?", orderItemIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
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

func (r *repository) UpdateKOTItemsStatus(ctx context.Context, itemIDs []uuid.UUID, status enums.KitchenItemStatus, at time.Time) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.KOTItem{}).
		Where("id IN ?", itemIDs).
		Updates(map[string]any{
			"status":      status,
			"last_update": at,
		}).Error
}

func (r *repository) UpdateKOT(ctx context.Context, kotID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.KOT{}).
		Where("id = ?", kotID).
		Updates(updates).Error
}

func (r *repository) ListOrders(ctx context.Context, branchIDs []uuid.UUID, filters ListFilters) ([]models.POSOrder, string, error) {
	query := r.db.WithContext(ctx).
		Model(&models.POSOrder{}).
		Preload("Table").
		Preload("Items")

	if branchIDs != nil {
		query = query.Where("branch_id IN ?", branchIDs)
	}
	if filters.BranchID != nil {
		query = query.Where("branch_id = ?", *filters.BranchID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("ordered_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("ordered_at < ?", *filters.DateTo)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("order_id LIKE ? OR customer_name LIKE ?", like, like)
	}
	if filters.Cursor != nil {
		query = query.Where(
			"ordered_at < ? OR (ordered_at = ? AND id < ?)",
			filters.Cursor.OrderedAt, filters.Cursor.OrderedAt, filters.Cursor.ID,
		)
	}

	query = query.Order("ordered_at DESC").Order("id DESC")

	paged := filters.Limit > 0 || filters.Cursor != nil
	limit := pagination.NormalizeLimit(filters.Limit)
	if paged {
		query = query.Limit(pagination.LimitWithBuffer(filters.Limit))
	}

	var rows []models.POSOrder
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	var nextCursor string
	if paged && len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			OrderedAt: last.OrderedAt,
			ID:        last.ID,
		})
	}
	return rows, nextCursor, nil
}
