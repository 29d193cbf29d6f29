package models

import (
	"time"
)

// PriceTier maps a contiguous pool-volume range to a base monthly price
type PriceTier struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Price float64 `json:"price"`
}

// Settings is the singleton business configuration row. It holds both the
// pricing table used by the fee calculator and the billing bot config read
// by the reminder job.
type Settings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Pricing
	Tiers        []PriceTier `gorm:"serializer:json" json:"tiers"`
	WellWaterFee float64     `gorm:"type:decimal(10,2)" json:"well_water_fee"`
	ProductsFee  float64     `gorm:"type:decimal(10,2)" json:"products_fee"`
	PartyPoolFee float64     `gorm:"type:decimal(10,2)" json:"party_pool_fee"`
	PricePerKM   float64     `gorm:"type:decimal(10,2)" json:"price_per_km"`
	FreeRadiusKM float64     `gorm:"type:decimal(8,2)" json:"free_radius_km"`

	// Payment identity shown in reminders
	PixKey    string `gorm:"type:text" json:"pix_key"`
	PayeeName string `gorm:"type:text" json:"payee_name"`

	// Conversational bot global toggle; when off, inbound messages are
	// recorded but never answered automatically
	ChatBotEnabled bool `gorm:"default:true" json:"chat_bot_enabled"`

	// Billing bot
	BotEnabled           bool   `gorm:"default:false" json:"bot_enabled"`
	DryRun               bool   `gorm:"default:true" json:"dry_run"`
	LeadTimeDays         int    `gorm:"default:3" json:"lead_time_days"`
	MessageTemplate      string `gorm:"type:text" json:"message_template"`
	ProviderTemplateName string `gorm:"type:text" json:"provider_template_name"`
	ProviderTemplateLang string `gorm:"type:text;default:'pt_BR'" json:"provider_template_lang"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Settings) TableName() string {
	return "settings"
}
