package importer

import (
	"context"

	"github.com/google/uuid"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/models"
)

// Status is the database health summary shown on the dashboard.
type Status struct {
	Database      string `json:"database"`
	TotalInvoices int64  `json:"total_invoices"`
}

func (s *Service) Status(ctx context.Context) (*Status, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "database handle unavailable")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "database unreachable")
	}
	n, err := s.invoices.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{Database: "connected", TotalInvoices: n}, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uint) (*models.InvoiceData, error) {
	return s.invoices.GetData(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, customerID *uint) ([]models.InvoiceSummary, error) {
	return s.invoices.ListAll(ctx, customerID)
}

func (s *Service) RecentInvoices(ctx context.Context, limit int) ([]models.InvoiceSummary, error) {
	return s.invoices.GetRecent(ctx, limit)
}

func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.customers.ListAll(ctx)
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	return s.runs.ListRecent(ctx, limit)
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	return s.runs.GetByID(ctx, id)
}
