package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Vendor{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.ImportRun{},
	))
	require.NoError(t, NewVendorRepository(db).Seed(context.Background(), &models.Vendor{
		ID:      models.DefaultVendorID,
		Name:    "Test Vendor LLC",
		Address: "1 Vendor Way\nSuite 2",
		Email:   "billing@vendor.test",
		Phone:   "555-0100",
	}))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createInvoice(t *testing.T, db *gorm.DB, customerID uint, number string, date time.Time, amounts ...string) *models.Invoice {
	t.Helper()
	ctx := context.Background()
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.RequireFromString(a))
	}
	inv := &models.Invoice{
		InvoiceNumber: number,
		CustomerID:    customerID,
		VendorID:      models.DefaultVendorID,
		InvoiceDate:   date,
		DueDate:       date.AddDate(0, 0, 30),
		PaymentTerms:  models.DefaultPaymentTerms,
		TotalAmount:   total,
	}
	require.NoError(t, NewInvoiceRepository(db).Create(ctx, inv))
	items := NewInvoiceItemRepository(db)
	for i, a := range amounts {
		require.NoError(t, items.Add(ctx, &models.InvoiceItem{
			InvoiceID:   inv.ID,
			WorkDate:    date.AddDate(0, 0, -i),
			Description: fmt.Sprintf("work %d", i+1),
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.RequireFromString(a),
			Amount:      decimal.RequireFromString(a),
		}))
	}
	return inv
}

func TestVendorSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewVendorRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, &models.Vendor{ID: models.DefaultVendorID, Name: "Other", Address: "x", Email: "y", Phone: "z"}))

	var count int64
	require.NoError(t, db.Model(&models.Vendor{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	v, err := repo.Get(ctx, models.DefaultVendorID)
	require.NoError(t, err)
	assert.Equal(t, "Test Vendor LLC", v.Name)

	_, err = repo.Get(ctx, 42)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCustomerUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	id1, err := repo.Upsert(ctx, "Acme Corp", "Old address")
	require.NoError(t, err)
	id2, err := repo.Upsert(ctx, "Acme Corp", "456 Business Blvd\nAnytown, CA 90210")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	c, err := repo.GetByID(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "456 Business Blvd\nAnytown, CA 90210", c.Address)

	other, err := repo.Upsert(ctx, "acme corp", "")
	require.NoError(t, err)
	assert.NotEqual(t, id1, other)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme Corp", all[0].Name)
}

func TestCustomerUpsertConcurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	const workers = 8
	ids := make([]uint, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = repo.Upsert(ctx, "Race Inc", fmt.Sprintf("address %d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Where("name = ?", "Race Inc").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCustomerGetByNameAbsent(t *testing.T) {
	db := newTestDB(t)
	c, err := NewCustomerRepository(db).GetByName(context.Background(), "Nobody")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestCustomerCreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Customer{Name: "Dup", Address: "a"}))
	err := repo.Create(ctx, &models.Customer{Name: "Dup", Address: "b"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConstraint))
}

func TestImportFromProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	id, err := repo.ImportFromProfile(ctx, &models.ClientProfile{Client: models.ClientInfo{Name: "Profiled"}})
	require.NoError(t, err)
	c, err := repo.GetByName(ctx, "Profiled")
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "", c.Address)
}

func TestInvoiceDuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cid, err := NewCustomerRepository(db).Upsert(ctx, "Acme Corp", "x")
	require.NoError(t, err)

	first := createInvoice(t, db, cid, "2025.03.31", day(2025, 3, 31), "500.00")

	err = NewInvoiceRepository(db).Create(ctx, &models.Invoice{
		InvoiceNumber: "2025.03.31",
		CustomerID:    cid,
		VendorID:      models.DefaultVendorID,
		InvoiceDate:   day(2025, 3, 31),
		DueDate:       day(2025, 4, 30),
		PaymentTerms:  models.DefaultPaymentTerms,
		TotalAmount:   decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConstraint))
	assert.Contains(t, err.Error(), "invoice_number=2025.03.31")

	stored, err := NewInvoiceRepository(db).GetByNumber(ctx, "2025.03.31")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "500.00", stored.TotalAmount.StringFixed(2))

	byID, err := NewInvoiceRepository(db).GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025.03.31", byID.InvoiceNumber)
	assert.Equal(t, cid, byID.CustomerID)
}

func TestInvoiceReferentialViolations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := NewInvoiceRepository(db).Create(ctx, &models.Invoice{
		InvoiceNumber: "2025.01.01",
		CustomerID:    999,
		VendorID:      models.DefaultVendorID,
		InvoiceDate:   day(2025, 1, 1),
		DueDate:       day(2025, 1, 31),
		PaymentTerms:  models.DefaultPaymentTerms,
		TotalAmount:   decimal.Zero,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConstraint))

	err = NewInvoiceItemRepository(db).Add(ctx, &models.InvoiceItem{
		InvoiceID:   12345,
		WorkDate:    day(2025, 1, 1),
		Description: "orphan",
		Quantity:    decimal.NewFromInt(1),
		Rate:        decimal.NewFromInt(1),
		Amount:      decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConstraint))
}

func TestGetDataRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cid, err := NewCustomerRepository(db).Upsert(ctx, `O'Brien & Sons "Ltd"`, "Line 1\nLine 2\nLine 3")
	require.NoError(t, err)

	inv := createInvoice(t, db, cid, "2025.12.15", day(2025, 12, 15), "100.00", "0.50", "1250.25")
	require.NoError(t, db.Model(&models.InvoiceItem{}).
		Where("invoice_id = ? AND description = ?", inv.ID, "work 2").
		Update("description", `Fix "login" & <signup> flow`).Error)

	data, err := NewInvoiceRepository(db).GetData(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025.12.15", data.InvoiceNumber)
	assert.Equal(t, "12/15/2025", data.InvoiceDate)
	assert.Equal(t, "01/14/2026", data.DueDate)
	assert.Equal(t, models.DefaultPaymentTerms, data.PaymentTerms)
	assert.Equal(t, `O'Brien & Sons "Ltd"`, data.Client.Name)
	assert.Equal(t, "Line 1\nLine 2\nLine 3", data.Client.Address)
	assert.Equal(t, "Test Vendor LLC", data.Company.Name)
	assert.Equal(t, "1 Vendor Way\nSuite 2", data.Company.Address)
	assert.Equal(t, "1350.75", data.Total.StringFixed(2))

	require.Len(t, data.Items, 3)
	assert.Equal(t, "work 1", data.Items[0].Description)
	assert.Equal(t, `Fix "login" & <signup> flow`, data.Items[1].Description)
	assert.Equal(t, "0.50", data.Items[1].Rate.StringFixed(2))
	assert.Equal(t, "12/15/2025", data.Items[0].Date)
	assert.Equal(t, "work 3", data.Items[2].Description)
	assert.Equal(t, "1250.25", data.Items[2].Amount.StringFixed(2))

	sum := decimal.Zero
	for _, it := range data.Items {
		sum = sum.Add(it.Amount)
	}
	assert.True(t, sum.Equal(data.Total))

	items, err := NewInvoiceItemRepository(db).ListByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = NewInvoiceRepository(db).GetData(ctx, 9999)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestGetDataRejectsCorruptRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cid, err := NewCustomerRepository(db).Upsert(ctx, "Acme", "1 Main St")
	require.NoError(t, err)
	inv := createInvoice(t, db, cid, "2025.03.31", day(2025, 3, 31), "500.00")

	require.NoError(t, db.Exec("UPDATE customers SET name = '' WHERE id = ?", cid).Error)

	_, err = NewInvoiceRepository(db).GetData(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindIntegrity))
	assert.Contains(t, err.Error(), "field=name")
	assert.Contains(t, err.Error(), "invoice_number=2025.03.31")
}

func TestListAllAndRecent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	customers := NewCustomerRepository(db)
	acme, err := customers.Upsert(ctx, "Acme", "")
	require.NoError(t, err)
	beta, err := customers.Upsert(ctx, "Beta", "")
	require.NoError(t, err)

	createInvoice(t, db, acme, "2025.01.15", day(2025, 1, 15), "10.00")
	createInvoice(t, db, beta, "2025.03.01", day(2025, 3, 1), "20.00")
	createInvoice(t, db, acme, "2025.02.10", day(2025, 2, 10), "30.00")
	createInvoice(t, db, beta, "2025.04.20", day(2025, 4, 20), "40.00")

	repo := NewInvoiceRepository(db)
	all, err := repo.ListAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"2025.04.20", "2025.03.01", "2025.02.10", "2025.01.15"},
		[]string{all[0].InvoiceNumber, all[1].InvoiceNumber, all[2].InvoiceNumber, all[3].InvoiceNumber})
	assert.Equal(t, "Beta", all[0].CustomerName)
	assert.Equal(t, "40.00", all[0].TotalAmount.StringFixed(2))

	onlyAcme, err := repo.ListAll(ctx, &acme)
	require.NoError(t, err)
	require.Len(t, onlyAcme, 2)
	assert.Equal(t, "2025.02.10", onlyAcme[0].InvoiceNumber)

	recent, err := repo.GetRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, "2025.04.20", recent[0].InvoiceNumber)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestTransactionRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cid, err := NewCustomerRepository(db).Upsert(ctx, "Tx", "")
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		inv := &models.Invoice{
			InvoiceNumber: "2025.05.05",
			CustomerID:    cid,
			VendorID:      models.DefaultVendorID,
			InvoiceDate:   day(2025, 5, 5),
			DueDate:       day(2025, 6, 4),
			PaymentTerms:  models.DefaultPaymentTerms,
			TotalAmount:   decimal.NewFromInt(5),
		}
		if err := NewInvoiceRepository(db).WithTx(tx).Create(ctx, inv); err != nil {
			return err
		}
		return NewInvoiceItemRepository(db).WithTx(tx).Add(ctx, &models.InvoiceItem{
			InvoiceID: inv.ID + 100,
			WorkDate:  day(2025, 5, 5),
			Quantity:  decimal.NewFromInt(1),
			Rate:      decimal.NewFromInt(5),
			Amount:    decimal.NewFromInt(5),
		})
	})
	require.Error(t, err)

	n, err := NewInvoiceRepository(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportRuns(t *testing.T) {
	db := newTestDB(t)
	repo := NewImportRunRepository(db)
	ctx := context.Background()

	start := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	older := &models.ImportRun{ProfileFile: "a.json", DataFile: "invoice-data-3-30.txt", Status: models.ImportStatusFailed,
		ErrorKind: string(apperrors.KindLineItem), ErrorMessage: "line 2: bad date", StartedAt: start}
	newer := &models.ImportRun{ProfileFile: "a.json", DataFile: "invoice-data-3-31.txt", Status: models.ImportStatusCompleted,
		InvoiceNumber: "2025.03.31", ItemCount: 1, Profile: []byte(`{"client":{"name":"Acme"}}`), StartedAt: start.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.NotEqual(t, uuid.Nil, older.ID)

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "line 2: bad date", got.ErrorMessage)
	assert.False(t, got.Succeeded())

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil, "x"))
	assert.True(t, apperrors.Is(classify(gorm.ErrRecordNotFound, "x"), apperrors.KindNotFound))
	assert.True(t, apperrors.Is(classify(gorm.ErrDuplicatedKey, "x"), apperrors.KindConstraint))
	assert.True(t, apperrors.Is(classify(gorm.ErrForeignKeyViolated, "x"), apperrors.KindConstraint))
	assert.True(t, apperrors.Is(classify(fmt.Errorf("boom"), "x"), apperrors.KindInternal))
}
