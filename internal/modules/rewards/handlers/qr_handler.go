package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/whatsapp"
)

const defaultQRText = "Hi! Here is my receipt"

// QRHandler serves click-to-chat QR codes for table cards.
type QRHandler struct {
	number string
}

func NewQRHandler(displayNumber string) *QRHandler {
	return &QRHandler{number: displayNumber}
}

// GetTableCard returns a PNG QR code that opens a WhatsApp chat with the
// restaurant's number.
// GET /qr/table-card?size=256&text=...
func (h *QRHandler) GetTableCard(c *fiber.Ctx) error {
	size := c.QueryInt("size", 256)
	if size < 64 || size > 2048 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "size must be between 64 and 2048",
		})
	}

	png, err := whatsapp.ClickToChatQR(h.number, c.Query("text", defaultQRText), size)
	if errors.Is(err, whatsapp.ErrDisabled) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "WHATSAPP_DISPLAY_NUMBER is not configured",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
