package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Execution log status constants
const (
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusError     = "error"
)

// BillingExecutionLog is the immutable audit record of one batch run
type BillingExecutionLog struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BatchID string    `gorm:"type:text;unique;not null" json:"batch_id"`
	Status  string    `gorm:"type:text;default:'running'" json:"status"`

	TargetDate string `gorm:"type:text" json:"target_date"` // YYYY-MM-DD in business timezone
	DryRun     bool   `json:"dry_run"`
	Manual     bool   `json:"manual"`

	Processed int `gorm:"default:0" json:"processed"`
	Sent      int `gorm:"default:0" json:"sent"`
	Ignored   int `gorm:"default:0" json:"ignored"`
	Failed    int `gorm:"default:0" json:"failed"`

	Error string `gorm:"type:text" json:"error,omitempty"`

	StartedAt  time.Time  `gorm:"autoCreateTime" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// TableName specifies the table name
func (BillingExecutionLog) TableName() string {
	return "billing_execution_logs"
}

// BeforeCreate sets UUID before creating
func (l *BillingExecutionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Per-client billing message outcome constants
const (
	BillingStatusAnalyzing  = "analyzing"
	BillingStatusSent       = "sent"
	BillingStatusFailed     = "failed"
	BillingStatusIgnored    = "ignored_date"
	BillingStatusSimulation = "skipped_simulation"
)

// BillingMessage is one client's outcome within a batch run
type BillingMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ExecutionID uuid.UUID `gorm:"type:uuid;not null;index" json:"execution_id"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null" json:"client_id"`
	ClientName  string    `gorm:"type:text" json:"client_name"`
	Phone       string    `gorm:"type:text" json:"phone"`

	Status string  `gorm:"type:text;default:'analyzing'" json:"status"`
	Reason string  `gorm:"type:text" json:"reason,omitempty"`
	Amount float64 `gorm:"type:decimal(10,2)" json:"amount"`

	// Rendered message (dry-run preview or the text actually dispatched)
	Preview string `gorm:"type:text" json:"preview,omitempty"`

	// Raw provider response body, kept for diagnosis of failed sends
	ProviderResponse datatypes.JSON `gorm:"type:jsonb" json:"provider_response,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (BillingMessage) TableName() string {
	return "billing_messages"
}

// BeforeCreate sets UUID before creating
func (m *BillingMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
