package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/services"
)

type SessionHandler struct {
	chatService *services.ChatService
}

func NewSessionHandler(chatService *services.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

type operatorMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage pushes an operator-authored message into a session.
// POST /sessions/:phone/messages
func (h *SessionHandler) SendMessage(c *fiber.Ctx) error {
	var req operatorMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	if err := h.chatService.OperatorReply(c.Params("phone"), req.Text); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "sent"})
}

// Close ends the conversation. POST /sessions/:phone/close
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	if err := h.chatService.CloseSession(c.Params("phone")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "closed"})
}

// Get returns a session and its transcript. GET /sessions/:phone
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, messages, err := h.chatService.Transcript(c.Params("phone"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}
	return c.JSON(fiber.Map{
		"session":  session,
		"messages": messages,
	})
}
