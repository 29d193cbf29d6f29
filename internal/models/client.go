package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan constants
const (
	PlanSimple = "simple"
	PlanVIP    = "vip"
)

// Payment status constants
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusOverdue = "overdue"
)

// Client represents a pool-maintenance customer
type Client struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name  string    `gorm:"type:text;not null" json:"name"`
	Phone string    `gorm:"type:text;index" json:"phone"`

	// Pool attributes
	PoolVolume   float64 `gorm:"type:decimal(12,2)" json:"pool_volume"`
	HasWellWater bool    `gorm:"default:false" json:"has_well_water"`
	HasProducts  bool    `gorm:"default:false" json:"has_products"`
	IsPartyPool  bool    `gorm:"default:false" json:"is_party_pool"`
	DistanceKM   float64 `gorm:"type:decimal(8,2)" json:"distance_km"`

	// Plan
	Plan             string   `gorm:"type:text;default:'simple'" json:"plan"`
	FidelityDiscount *float64 `gorm:"type:decimal(5,2)" json:"fidelity_discount,omitempty"`

	// Payment state
	PaymentStatus string     `gorm:"type:text;default:'pending';index" json:"payment_status"`
	DueDate       *time.Time `json:"due_date,omitempty"`

	// Manual fee override (bypasses the tier calculation entirely)
	CustomFee *float64 `gorm:"type:decimal(10,2)" json:"custom_fee,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Client) TableName() string {
	return "clients"
}

// BeforeCreate sets UUID before creating
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsVIP reports whether the client is on the VIP plan
func (c *Client) IsVIP() bool {
	return c.Plan == PlanVIP
}
