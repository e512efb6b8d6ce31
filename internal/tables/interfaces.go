package tables

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
)

// Repository defines persistence operations for dining tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.POSTable, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.POSTable, error)
	ListAvailable(ctx context.Context, branchID uuid.UUID) ([]models.POSTable, error)
	FindOpenOrderForTable(ctx context.Context, tableID uuid.UUID) (*models.POSOrder, error)
	FindBranchByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
}
