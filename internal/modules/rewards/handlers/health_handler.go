package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ocrProvider      string
	whatsappProvider string
	uploadProvider   string
}

func NewHealthHandler(ocrProvider, whatsappProvider, uploadProvider string) *HealthHandler {
	return &HealthHandler{
		ocrProvider:      ocrProvider,
		whatsappProvider: whatsappProvider,
		uploadProvider:   uploadProvider,
	}
}

// GetHealth reports liveness and the configured providers.
// GET /health
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "receipt-api",
		"ocr":      h.ocrProvider,
		"whatsapp": h.whatsappProvider,
		"upload":   h.uploadProvider,
	})
}
