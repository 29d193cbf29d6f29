package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/services"
)

type BillingHandler struct {
	billingService *services.BillingService
}

func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// Run triggers one billing batch. POST /billing-run?manual=true|false
func (h *BillingHandler) Run(c *fiber.Ctx) error {
	manual := c.Query("manual") == "true"
	started := time.Now()

	summary, err := h.billingService.Run(c.Context(), manual)
	if err != nil {
		log.Error().Err(err).Msg("billing run failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"batchId":       summary.BatchID,
		"summary":       summary,
		"executionTime": time.Since(started).String(),
	})
}

// GetExecution returns a run's audit record with per-client outcomes.
// GET /billing-runs/:id
func (h *BillingHandler) GetExecution(c *fiber.Ctx) error {
	execution, messages, err := h.billingService.Execution(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "execution not found",
		})
	}
	return c.JSON(fiber.Map{
		"execution": execution,
		"messages":  messages,
	})
}
