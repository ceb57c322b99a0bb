package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"invoice-import-backend/internal/models"
)

const defaultRunLimit = 20

type ImportRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

func (r *ImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return classify(r.db.WithContext(ctx).Create(run).Error, "record import run")
}

func (r *ImportRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	var run models.ImportRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, classify(err, "import run not found")
	}
	return &run, nil
}

// ListRecent returns the latest runs first.
func (r *ImportRunRepository) ListRecent(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	runs := []models.ImportRun{}
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, classify(err, "list import runs")
	}
	return runs, nil
}
