package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// ImportRun records one import attempt. Failed runs carry the error and
// never reference an invoice.
type ImportRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileFile   string         `gorm:"size:255" json:"profile_file"`
	DataFile      string         `gorm:"size:255" json:"data_file"`
	Status        string         `gorm:"size:20;not null;index" json:"status"`
	InvoiceNumber string         `gorm:"size:20" json:"invoice_number,omitempty"`
	InvoiceID     *uint          `json:"invoice_id,omitempty"`
	ItemCount     int            `json:"item_count"`
	ErrorKind     string         `gorm:"size:32" json:"error_kind,omitempty"`
	ErrorMessage  string         `gorm:"type:text" json:"error_message,omitempty"`
	Profile       datatypes.JSON `json:"profile,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *ImportRun) Succeeded() bool {
	return r.Status == ImportStatusCompleted
}
