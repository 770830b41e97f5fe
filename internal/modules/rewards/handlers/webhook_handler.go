package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/whatsapp"
	rewardjobs "github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/jobs"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/services"
)

// WebhookHandler receives WhatsApp Cloud API notifications
type WebhookHandler struct {
	verifyToken string
	queue       rewardjobs.Enqueuer
	whatsapp    *whatsapp.Service
	logger      zerolog.Logger
}

func NewWebhookHandler(verifyToken string, queue rewardjobs.Enqueuer, wa *whatsapp.Service, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		queue:       queue,
		whatsapp:    wa,
		logger:      logger.With().Str("component", "webhook").Logger(),
	}
}

// Verify answers the subscription handshake.
// GET /webhook/whatsapp
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	if h.verifyToken == "" ||
		c.Query("hub.mode") != "subscribe" ||
		c.Query("hub.verify_token") != h.verifyToken {
		return c.SendStatus(fiber.StatusForbidden)
	}
	return c.SendString(c.Query("hub.challenge"))
}

// Receive enqueues a receipt.process job for every receipt photo. The
// response is always 200 so the Cloud API does not redeliver.
// POST /webhook/whatsapp
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload whatsapp.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Warn().Err(err).Msg("⚠️ Invalid webhook payload")
		return c.SendStatus(fiber.StatusOK)
	}

	ctx := c.UserContext()
	queued := 0
	for _, msg := range payload.Messages() {
		media := msg.ReceiptMedia()
		if media == nil {
			if msg.Type == "text" {
				if err := h.whatsapp.SendMessage(ctx, msg.From, services.HelpMessage); err != nil {
					h.logger.Warn().Err(err).Str("from", msg.From).Msg("⚠️ Failed to send help reply")
				}
			}
			continue
		}

		job, err := h.queue.Enqueue(ctx, msg.From, rewardjobs.JobProcessReceipt, rewardjobs.ProcessPayload{
			MessageID: msg.ID,
			From:      msg.From,
			MediaID:   media.ID,
			MimeType:  media.MimeType,
		}, rewardjobs.EnqueueOptions())
		if err != nil {
			h.logger.Error().Err(err).Str("message_id", msg.ID).Msg("❌ Failed to enqueue receipt")
			continue
		}

		h.whatsapp.MarkMessageAsRead(ctx, msg.ID)
		h.logger.Info().Str("job_id", job.ID.String()).Str("from", msg.From).Msg("📥 Receipt queued")
		queued++
	}

	return c.JSON(fiber.Map{"queued": queued})
}
