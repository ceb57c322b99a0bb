package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoice-import-backend/internal/models"
)

type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Get(ctx context.Context, id uint) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, id).Error; err != nil {
		return nil, classify(err, "vendor not found")
	}
	return &vendor, nil
}

// Seed inserts the vendor unless a row with its id already exists.
func (r *VendorRepository) Seed(ctx context.Context, vendor *models.Vendor) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(vendor).Error
	return classify(err, "seed vendor")
}
