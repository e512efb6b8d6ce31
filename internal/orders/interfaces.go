package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// Repository defines persistence operations for POS orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.POSOrder) (*models.POSOrder, error)
	CreateOrderItems(ctx context.Context, items []models.POSOrderItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.POSOrder, error)
	FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.POSOrder, error)
	FindOrderItem(ctx context.Context, lineID uuid.UUID) (*models.POSOrderItem, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.POSOrderItem, error)
	FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	FindTable(ctx context.Context, id uuid.UUID) (*models.POSTable, error)
	FindOpenOrderForTable(ctx context.Context, tableID uuid.UUID) (*models.POSOrder, error)
	CountOrdersForBranchBetween(ctx context.Context, branchID uuid.UUID, from, to time.Time) (int64, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateOrderItem(ctx context.Context, lineID uuid.UUID, updates map[string]any) error
	UpdateOrderItemsKitchenStatus(ctx context.Context, lineIDs []uuid.UUID, status enums.KitchenItemStatus, at time.Time) error
	FindKOTItemsForOrderItems(ctx context.Context, orderItemIDs []uuid.UUID) ([]models.KOTItem, error)
	FindKOTItems(ctx context.Context, kotID uuid.UUID) ([]models.KOTItem, error)
	UpdateKOTItemsStatus(ctx context.Context, itemIDs []uuid.UUID, status enums.KitchenItemStatus, at time.Time) error
	UpdateKOT(ctx context.Context, kotID uuid.UUID, updates map[string]any) error
	ListOrders(ctx context.Context, branchIDs []uuid.UUID, filters ListFilters) ([]models.POSOrder, string, error)
}
