package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/models"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	if err != nil {
		return withCustomer(classify(err, "create customer"), customer.Name)
	}
	return nil
}

// GetByName returns nil, nil when no customer has that exact name.
func (r *CustomerRepository) GetByName(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "find customer")
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, classify(err, "customer not found")
	}
	return &customer, nil
}

// Upsert creates the customer or overwrites the address of the existing row
// with the same name, in one statement, and returns the row id. Concurrent
// callers with the same name converge on one row.
func (r *CustomerRepository) Upsert(ctx context.Context, name, address string) (uint, error) {
	customer := models.Customer{Name: name, Address: address}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
		}).
		Create(&customer).Error
	if err != nil {
		return 0, withCustomer(classify(err, "upsert customer"), name)
	}

	stored, err := r.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if stored == nil {
		return 0, apperrors.Integrity("customer missing after upsert", nil).WithContext("customer", name)
	}
	return stored.ID, nil
}

// ImportFromProfile upserts the customer a client profile describes.
func (r *CustomerRepository) ImportFromProfile(ctx context.Context, profile *models.ClientProfile) (uint, error) {
	c := models.CustomerFromProfile(profile)
	return r.Upsert(ctx, c.Name, c.Address)
}

func (r *CustomerRepository) ListAll(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error
	return customers, classify(err, "list customers")
}

func withCustomer(err error, name string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.WithContext("customer", name)
	}
	return err
}
