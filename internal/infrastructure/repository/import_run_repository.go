package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
	"github.com/mohammadpnp/client-import/internal/infrastructure/db/models"
)

type ImportRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

func (r *ImportRunRepository) Record(ctx context.Context, run domain.ImportRun) error {
	row := models.ImportRun{
		ID:             run.ID,
		Mode:           string(run.Mode),
		UserID:         run.UserID,
		Role:           string(run.Role),
		TotalRows:      int64(run.TotalRows),
		NewCount:       int64(run.NewCount),
		DuplicateCount: int64(run.DuplicateCount),
		ErrorCount:     int64(run.ErrorCount),
		CreatedCount:   int64(run.CreatedCount),
		UpdatedCount:   int64(run.UpdatedCount),
		SkippedCount:   int64(run.SkippedCount),
		FailedCount:    int64(run.FailedCount),
		StartedAt:      run.StartedAt.UTC(),
		FinishedAt:     run.FinishedAt.UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create import run: %w", err)
	}
	return nil
}
