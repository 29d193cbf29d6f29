package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/services"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/whatsapp"
)

type WebhookHandler struct {
	chatService *services.ChatService
	verifyToken string
}

func NewWebhookHandler(chatService *services.ChatService, verifyToken string) *WebhookHandler {
	return &WebhookHandler{chatService: chatService, verifyToken: verifyToken}
}

// Verify handles the provider's one-time GET handshake: echo the challenge
// verbatim when the verify token matches, forbid otherwise.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		return c.Status(fiber.StatusOK).SendString(challenge)
	}
	log.Warn().Str("mode", mode).Msg("webhook verification rejected")
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive handles inbound events. It always acknowledges with 200 — the
// provider interprets anything else as "please retry", which would storm the
// same failure — so internal errors are logged, never surfaced.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("webhook processing panicked")
		}
	}()

	var payload whatsapp.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		log.Warn().Err(err).Msg("unparseable webhook payload")
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	if err := h.chatService.ProcessInbound(c.Context(), &payload); err != nil {
		log.Error().Err(err).Msg("failed to process inbound message")
	}

	return c.JSON(fiber.Map{"status": "received"})
}

// MethodNotAllowed guards the webhook path against anything but GET/POST.
func (h *WebhookHandler) MethodNotAllowed(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusMethodNotAllowed)
}
