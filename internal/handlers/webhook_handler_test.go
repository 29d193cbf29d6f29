package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/repositories"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/services"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/whatsapp"
)

type nullDispatcher struct{}

func (nullDispatcher) Send(to, body string, buttons []whatsapp.Button) *whatsapp.SendResult {
	return &whatsapp.SendResult{Success: true, StatusCode: 200}
}

func (nullDispatcher) SendTemplate(to, name, lang string, params []string) *whatsapp.SendResult {
	return &whatsapp.SendResult{Success: true, StatusCode: 200}
}

func newWebhookApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Client{},
		&models.Settings{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.ProcessedMessage{},
	))

	chatService := services.NewChatService(
		repositories.NewClientRepo(db),
		repositories.NewSessionRepo(db),
		repositories.NewSettingsRepo(db),
		repositories.NewGormDedupStore(db),
		nullDispatcher{},
		"",
	)
	handler := NewWebhookHandler(chatService, "secret-token")

	app := fiber.New()
	app.Get("/webhook", handler.Verify)
	app.Post("/webhook", handler.Receive)
	app.All("/webhook", handler.MethodNotAllowed)
	return app, db
}

func TestWebhookVerify(t *testing.T) {
	app, _ := newWebhookApp(t)

	t.Run("valid handshake echoes challenge", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "12345", string(body))
	})

	t.Run("wrong token forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing mode forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhook?hub.verify_token=secret-token&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestWebhookReceive(t *testing.T) {
	app, db := newWebhookApp(t)

	t.Run("inbound message acknowledged and recorded", func(t *testing.T) {
		payload := `{
			"object": "whatsapp_business_account",
			"entry": [{"id": "123", "changes": [{"field": "messages", "value": {
				"messaging_product": "whatsapp",
				"contacts": [{"profile": {"name": "Ana"}, "wa_id": "5511988887777"}],
				"messages": [{"from": "5511988887777", "id": "wamid.h1", "type": "text", "text": {"body": "oi"}}]
			}}]}]
		}`
		req := httptest.NewRequest("POST", "/webhook", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&models.ChatSession{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("malformed body still acknowledged", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhook", strings.NewReader("not json"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("other methods rejected", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/webhook", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
	})
}
