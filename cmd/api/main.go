package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/config"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/database"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/handlers"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/repositories"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/services"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/shared/utils"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/whatsapp"
)

func main() {
	utils.InitLogger()

	cfg := config.LoadConfig()
	log.Info().Str("env", cfg.Env).Msg("Starting piscina-limpa-bot")

	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Repositories
	clientRepo := repositories.NewClientRepo(db.GORM)
	settingsRepo := repositories.NewSettingsRepo(db.GORM)
	sessionRepo := repositories.NewSessionRepo(db.GORM)
	billingRepo := repositories.NewBillingRepo(db.GORM)

	// Dedup store: redis when configured (atomic SET NX), postgres otherwise
	var dedup repositories.DedupStore
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		dedup = repositories.NewRedisDedupStore(goredis.NewClient(opts))
		log.Info().Msg("📨 Dedup store: redis")
	} else {
		dedup = repositories.NewGormDedupStore(db.GORM)
		log.Info().Msg("📨 Dedup store: postgres")
	}

	// WhatsApp Cloud API dispatcher
	waClient := whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.WhatsAppVersion)

	// Services
	chatService := services.NewChatService(clientRepo, sessionRepo, settingsRepo, dedup, waClient, cfg.PanelURL)
	billingService := services.NewBillingService(clientRepo, settingsRepo, billingRepo, waClient, cfg.BusinessTimezone)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(chatService, cfg.WebhookVerifyToken)
	billingHandler := handlers.NewBillingHandler(billingService)
	sessionHandler := handlers.NewSessionHandler(chatService)
	healthHandler := handlers.NewHealthHandler()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Piscina Limpa Bot",
	})

	// Middleware
	app.Use(cors.New())

	// Health check
	app.Get("/health", healthHandler.GetHealth)

	// Webhook routes (GET handshake, POST events, everything else 405)
	app.Get("/webhook", webhookHandler.Verify)
	app.Post("/webhook", webhookHandler.Receive)
	app.All("/webhook", webhookHandler.MethodNotAllowed)

	// Billing routes
	app.Post("/billing-run", billingHandler.Run)
	app.Get("/billing-runs/:id", billingHandler.GetExecution)

	// Operator session routes
	app.Get("/sessions/:phone", sessionHandler.Get)
	app.Post("/sessions/:phone/messages", sessionHandler.SendMessage)
	app.Post("/sessions/:phone/close", sessionHandler.Close)

	// Scheduled billing run in the business timezone
	scheduler := cron.New(cron.WithSeconds(), cron.WithLocation(billingService.Location()))
	if _, err := scheduler.AddFunc(cfg.BillingCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := billingService.Run(ctx, false); err != nil {
			log.Error().Err(err).Msg("scheduled billing run failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.BillingCron).Msg("Invalid billing cron expression")
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Info().Str("cron", cfg.BillingCron).Msg("⏰ Billing scheduler started")

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("🚀 Server listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
	log.Info().Msg("Goodbye 👋")
}
