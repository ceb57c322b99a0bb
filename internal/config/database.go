package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"invoice-import-backend/internal/logger"
	"invoice-import-backend/internal/models"
	"invoice-import-backend/internal/repository"
)

// IsPostgres reports whether a database URL names a PostgreSQL server rather
// than a SQLite file.
func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://") ||
		strings.Contains(url, "host=")
}

// SQLiteDSN turns a file path (or :memory:) into a DSN with foreign keys on.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	return Open(cfg.DatabaseURL)
}

// Open connects to url and applies the schema.
func Open(url string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger.WithComponent("gorm")),
	}

	var (
		db  *gorm.DB
		err error
	)
	if IsPostgres(url) {
		db, err = gorm.Open(postgres.Open(url), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(SQLiteDSN(url)), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if !IsPostgres(url) {
		// sqlite allows one writer; a single connection also keeps :memory: shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates the schema and seeds the single vendor row.
func Migrate(ctx context.Context, db *gorm.DB, vendor models.Vendor) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Vendor{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.ImportRun{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if vendor.ID == 0 {
		vendor.ID = models.DefaultVendorID
	}
	if err := repository.NewVendorRepository(db).Seed(ctx, &vendor); err != nil {
		return fmt.Errorf("failed to seed vendor: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Msgf(format, args...)
}

func newGormLogger(l zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{log: l}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
