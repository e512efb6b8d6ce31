package kitchen

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// Repository defines persistence operations for kitchen tickets. It also
// touches order lines to keep their kitchen mirror fields in sync.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateKOT(ctx context.Context, kot *models.KOT) (*models.KOT, error)
	CreateKOTItems(ctx context.Context, items []models.KOTItem) error
	FindKOT(ctx context.Context, id uuid.UUID) (*models.KOT, error)
	FindKOTForUpdate(ctx context.Context, id uuid.UUID) (*models.KOT, error)
	FindKOTItem(ctx context.Context, id uuid.UUID) (*models.KOTItem, error)
	FindKOTItems(ctx context.Context, kotID uuid.UUID) ([]models.KOTItem, error)
	UpdateKOT(ctx context.Context, kotID uuid.UUID, updates map[string]any) error
	UpdateKOTItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.POSOrder, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.POSOrderItem, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateOrderItems(ctx context.Context, lineIDs []uuid.UUID, updates map[string]any) error
	ListActiveKOTs(ctx context.Context, branchID uuid.UUID, statuses []enums.KOTStatus) ([]models.KOT, error)
}
