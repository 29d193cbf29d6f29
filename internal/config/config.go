package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	Env         string

	// WhatsApp Cloud API
	WhatsAppToken   string
	WhatsAppPhoneID string
	WhatsAppVersion string

	// Webhook handshake
	WebhookVerifyToken string

	// Billing job
	BusinessTimezone string
	BillingCron      string

	// Client dashboard link offered in chat menus
	PanelURL string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		Port:               os.Getenv("PORT"),
		Env:                os.Getenv("ENV"),
		WhatsAppToken:      os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppPhoneID:    os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppVersion:    os.Getenv("WHATSAPP_API_VERSION"),
		WebhookVerifyToken: os.Getenv("WEBHOOK_VERIFY_TOKEN"),
		BusinessTimezone:   os.Getenv("BUSINESS_TIMEZONE"),
		BillingCron:        os.Getenv("BILLING_CRON"),
		PanelURL:           os.Getenv("PANEL_URL"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.WhatsAppVersion == "" {
		cfg.WhatsAppVersion = "v18.0"
	}
	if cfg.BusinessTimezone == "" {
		cfg.BusinessTimezone = "America/Sao_Paulo"
	}
	if cfg.BillingCron == "" {
		// Daily at 09:00 business time (cron expression with seconds field)
		cfg.BillingCron = "0 0 9 * * *"
	}

	return cfg
}
