package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/logger"
	"invoice-import-backend/internal/metadata"
	"invoice-import-backend/internal/models"
	"invoice-import-backend/internal/parser"
	"invoice-import-backend/internal/repository"
)

// Request is one import: a client profile and a data file. The data file
// name carries the M-D token the invoice number and dates come from.
type Request struct {
	ProfileName string
	Profile     []byte
	DataName    string
	Data        io.Reader
	// Year applies to the M-D token; zero means the current year.
	Year int
}

type Service struct {
	db        *gorm.DB
	invoices  *repository.InvoiceRepository
	items     *repository.InvoiceItemRepository
	customers *repository.CustomerRepository
	runs      *repository.ImportRunRepository
	now       func() time.Time
	log       zerolog.Logger
}

func NewService(
	invoiceRepo *repository.InvoiceRepository,
	itemRepo *repository.InvoiceItemRepository,
	customerRepo *repository.CustomerRepository,
	runRepo *repository.ImportRunRepository,
) *Service {
	return &Service{
		db:        invoiceRepo.DB(),
		invoices:  invoiceRepo,
		items:     itemRepo,
		customers: customerRepo,
		runs:      runRepo,
		now:       time.Now,
		log:       logger.WithComponent("importer"),
	}
}

// New builds a service over db with the default repositories.
func New(db *gorm.DB) *Service {
	return NewService(
		repository.NewInvoiceRepository(db),
		repository.NewInvoiceItemRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewImportRunRepository(db),
	)
}

// WithClock replaces the clock used for the implicit year and run timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithLogger(l zerolog.Logger) *Service {
	s.log = l
	return s
}

// ImportFiles reads a profile and a data file from disk and imports them.
func (s *Service) ImportFiles(ctx context.Context, profilePath, dataPath string, year int) (*models.InvoiceData, error) {
	profile, err := os.ReadFile(profilePath)
	if err != nil {
		err = apperrors.Profile("cannot read client profile", err).WithContext("file", profilePath)
		s.record(ctx, s.newRun(profilePath, dataPath, nil), nil, 0, err)
		return nil, err
	}
	if _, err := models.ParseClientProfile(profile); err != nil {
		err = withFile(err, profilePath)
		s.record(ctx, s.newRun(profilePath, dataPath, profile), nil, 0, err)
		return nil, err
	}

	f, err := os.Open(dataPath)
	if err != nil {
		err = &parser.LineItemError{File: dataPath, Err: fmt.Errorf("open data file: %w", err)}
		s.record(ctx, s.newRun(profilePath, dataPath, profile), nil, 0, err)
		return nil, err
	}
	defer f.Close()

	return s.Import(ctx, Request{
		ProfileName: profilePath,
		Profile:     profile,
		DataName:    dataPath,
		Data:        f,
		Year:        year,
	})
}

// Import validates the whole request before writing anything. The customer
// upsert is committed on its own; the invoice and its items are written in
// one transaction, so a failure there leaves no invoice rows behind.
func (s *Service) Import(ctx context.Context, req Request) (*models.InvoiceData, error) {
	run := s.newRun(req.ProfileName, req.DataName, req.Profile)
	log := s.log.With().
		Str("run_id", run.ID.String()).
		Str("profile", req.ProfileName).
		Str("data", req.DataName).
		Logger()
	log.Debug().Msg("import started")

	data, itemCount, err := s.importInvoice(ctx, req, log)
	s.record(ctx, run, data, itemCount, err)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(apperrors.KindOf(err))).Msg("import failed")
		return nil, err
	}

	log.Info().
		Str("invoice_number", data.InvoiceNumber).
		Str("customer", data.Client.Name).
		Int("items", itemCount).
		Str("total", data.Total.StringFixed(2)).
		Msg("invoice imported")
	return data, nil
}

func (s *Service) importInvoice(ctx context.Context, req Request, log zerolog.Logger) (*models.InvoiceData, int, error) {
	profile, err := models.ParseClientProfile(req.Profile)
	if err != nil {
		return nil, 0, withFile(err, req.ProfileName)
	}

	year := req.Year
	if year == 0 {
		year = metadata.CurrentYear(s.now)
	}
	meta, err := metadata.FromFilename(req.DataName, year)
	if err != nil {
		return nil, 0, err
	}
	log.Debug().Str("invoice_number", meta.InvoiceNumber).Msg("metadata derived")

	if req.Data == nil {
		return nil, 0, &parser.LineItemError{File: req.DataName, Err: parser.ErrNoLineItems}
	}
	lines, err := parser.Parse(req.Data)
	if err != nil {
		var lineErr *parser.LineItemError
		if errors.As(err, &lineErr) && lineErr.File == "" {
			lineErr.File = req.DataName
		}
		return nil, 0, err
	}
	for _, line := range lines {
		if line.EmptyDescription {
			log.Warn().Int("line", line.Line).Msg("line item has an empty description")
		}
	}
	log.Debug().Int("items", len(lines)).Msg("data file parsed")

	customerID, err := s.customers.Upsert(ctx, profile.Client.Name, profile.Client.Address)
	if err != nil {
		return nil, 0, err
	}

	invoice := &models.Invoice{
		InvoiceNumber: meta.InvoiceNumber,
		CustomerID:    customerID,
		VendorID:      models.DefaultVendorID,
		InvoiceDate:   meta.InvoiceDate.Time(),
		DueDate:       meta.DueDate.Time(),
		PaymentTerms:  profile.PaymentTerms,
		TotalAmount:   parser.Total(lines),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.invoices.WithTx(tx).Create(ctx, invoice); err != nil {
			return err
		}
		items := s.items.WithTx(tx)
		for _, line := range lines {
			item := &models.InvoiceItem{
				InvoiceID:   invoice.ID,
				WorkDate:    line.Date.Time(),
				Description: line.Description,
				Quantity:    line.Quantity,
				Rate:        line.Rate,
				Amount:      line.Amount,
			}
			if err := items.Add(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, withInvoice(err, meta.InvoiceNumber, profile.Client.Name)
	}

	data, err := s.invoices.GetData(ctx, invoice.ID)
	if err != nil {
		return nil, 0, err
	}
	return data, len(lines), nil
}

func (s *Service) newRun(profileName, dataName string, profile []byte) *models.ImportRun {
	run := &models.ImportRun{
		ID:          uuid.New(),
		ProfileFile: filepath.Base(profileName),
		DataFile:    filepath.Base(dataName),
		StartedAt:   s.now().UTC(),
	}
	if trimmed := bytes.TrimSpace(profile); len(trimmed) > 0 && json.Valid(trimmed) {
		run.Profile = append([]byte(nil), trimmed...)
	}
	return run
}

// record stores the outcome of an attempt. A failure to record is logged
// and does not change the import result.
func (s *Service) record(ctx context.Context, run *models.ImportRun, data *models.InvoiceData, itemCount int, importErr error) {
	completed := s.now().UTC()
	run.CompletedAt = &completed
	if importErr != nil {
		run.Status = models.ImportStatusFailed
		run.ErrorKind = string(apperrors.KindOf(importErr))
		run.ErrorMessage = importErr.Error()
	} else {
		run.Status = models.ImportStatusCompleted
		run.InvoiceNumber = data.InvoiceNumber
		id := data.ID
		run.InvoiceID = &id
		run.ItemCount = itemCount
	}

	if err := s.runs.Create(ctx, run); err != nil {
		s.log.Error().Err(err).Str("run_id", run.ID.String()).Msg("failed to record import run")
	}
}

func withFile(err error, file string) error {
	var appErr *apperrors.Error
	if file != "" && errors.As(err, &appErr) {
		appErr.WithContext("file", file)
	}
	return err
}

func withInvoice(err error, invoiceNumber, customer string) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, apperrors.KindInternal, "write invoice")
		err = appErr
	}
	appErr.WithContext("invoice_number", invoiceNumber).WithContext("customer", customer)
	return err
}
