package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/repositories"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/logger"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/utils"
)

// errorResponse maps pipeline errors onto HTTP statuses. A persistence
// failure still returns the parsed receipt so the caller keeps the result.
func errorResponse(c *fiber.Ctx, err error) error {
	var pe *receipt.PersistenceError
	var nse *receipt.NoStrategySucceededError
	var ve validator.ValidationErrors

	switch {
	case errors.As(err, &pe):
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).
			Str("receipt_key", pe.Receipt.ReceiptKey).
			Msg("❌ Receipt parsed but not stored")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "receipt parsed but could not be stored",
			"receipt": pe.Receipt,
		})
	case errors.As(err, &nse):
		attempts := make([]string, 0, len(nse.Attempts))
		for _, a := range nse.Attempts {
			attempts = append(attempts, a.String())
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    "receipt not recognised",
			"attempts": attempts,
		})
	case errors.Is(err, receipt.ErrOcrFailed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "no text could be read from the image",
		})
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ve.Error(),
		})
	case errors.Is(err, utils.ErrInvalidPhone),
		errors.Is(err, upload.ErrTypeNotAllowed),
		errors.Is(err, receipt.ErrEmptyText):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, upload.ErrTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, repositories.ErrReceiptNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "receipt not found",
		})
	default:
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).Msg("❌ Request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
