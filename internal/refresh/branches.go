package refresh

import (
	"context"

	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
)

// BranchSource lists the branches snapshot jobs fan out over.
type BranchSource interface {
	ListActive(ctx context.Context) ([]models.Branch, error)
}

type gormBranchSource struct {
	db *gorm.DB
}

// NewBranchSource builds a BranchSource backed by the branches table.
func NewBranchSource(db *gorm.DB) BranchSource {
	return &gormBranchSource{db: db}
}

func (s *gormBranchSource) ListActive(ctx context.Context) ([]models.Branch, error) {
	var rows []models.Branch
	err := s.db.WithContext(ctx).
		Where("disabled = ?", false).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
