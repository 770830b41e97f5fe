package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/services"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/utils"
)

// ReceiptHandler serves the receipt pipeline over HTTP
type ReceiptHandler struct {
	receipts  *services.ReceiptService
	uploads   *upload.Service
	exports   *export.Service
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

func NewReceiptHandler(receipts *services.ReceiptService, uploads *upload.Service, exports *export.Service, validator *validator.Validate, logger zerolog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts:  receipts,
		uploads:   uploads,
		exports:   exports,
		validator: validator,
		logger:    logger.With().Str("component", "receipt_handler").Logger(),
		now:       time.Now,
	}
}

// ProcessReceiptRequest is the body of POST /receipts/process
type ProcessReceiptRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Phone    string `json:"phone" validate:"required,min=8,max=32"`
}

// ParseReceiptRequest is the body of POST /receipts/parse
type ParseReceiptRequest struct {
	Text     string `json:"text" validate:"required"`
	Strategy string `json:"strategy" validate:"omitempty,oneof=standard alternative generic"`
}

// ProcessReceipt runs OCR, the cascade and persistence for an image URL.
// POST /receipts/process
func (h *ReceiptHandler) ProcessReceipt(c *fiber.Ctx) error {
	req := new(ProcessReceiptRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errorResponse(c, err)
	}

	accepted, err := h.receipts.ProcessReceipt(c.UserContext(), req.ImageURL, req.Phone)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(accepted)
}

// UploadReceipt archives a multipart receipt photo then processes it.
// POST /receipts/upload (form fields: file, phone)
func (h *ReceiptHandler) UploadReceipt(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	phone, err := h.receipts.NormalizePhone(c.FormValue("phone"))
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.uploads.UploadMultipart(c.UserContext(), fileHeader, &upload.UploadOptions{
		Folder: "receipts/" + utils.PhoneKey(phone),
	})
	if err != nil {
		return errorResponse(c, err)
	}

	accepted, err := h.receipts.ProcessReceipt(c.UserContext(), result.Ref(), phone)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(accepted)
}

// ParseText runs the cascade (or one named strategy) over pasted OCR text.
// Nothing is stored.
// POST /receipts/parse
func (h *ReceiptHandler) ParseText(c *fiber.Ctx) error {
	req := new(ParseReceiptRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errorResponse(c, err)
	}

	if req.Strategy != "" {
		strategy, _ := receipt.StrategyByName(req.Strategy)
		candidate, err := strategy.Extract(req.Text)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"receipt":  candidate,
			"valid":    receipt.Validate(candidate),
			"problems": receipt.Problems(candidate),
		})
	}

	parsed, err := h.receipts.ParseText(c.UserContext(), req.Text)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"receipt": parsed,
		"valid":   true,
	})
}

// GetReceipt returns one stored receipt.
// GET /receipts/:key
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	accepted, err := h.receipts.GetReceipt(c.UserContext(), c.Params("key"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(accepted)
}

// ListGuestReceipts returns every receipt of a guest.
// GET /guests/:phone/receipts
func (h *ReceiptHandler) ListGuestReceipts(c *fiber.Ctx) error {
	list, err := h.receipts.ListGuestReceipts(c.UserContext(), c.Params("phone"))
	if err != nil {
		return errorResponse(c, err)
	}

	var total float64
	for _, r := range list {
		total += r.TotalAmount
	}
	return c.JSON(fiber.Map{
		"receipts": list,
		"count":    len(list),
		"total":    total,
	})
}

// GuestSummary aggregates a guest's spend over a period.
// GET /guests/:phone/summary?period=all|today|this_week|this_month|last_month|this_year|last_30_days|last_90_days
func (h *ReceiptHandler) GuestSummary(c *fiber.Ctx) error {
	period := c.Query("period", analytics.PeriodAll)
	dateRange, err := analytics.GetDateRange(period, h.now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("%s: %q", err, period),
		})
	}

	phone, err := h.receipts.NormalizePhone(c.Params("phone"))
	if err != nil {
		return errorResponse(c, err)
	}
	list, err := h.receipts.ListGuestReceipts(c.UserContext(), phone)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(analytics.SummarizeGuest(phone, period, dateRange, list))
}

// ExportGuestReceipts downloads a guest statement.
// GET /guests/:phone/receipts/export?format=xlsx|pdf
func (h *ReceiptHandler) ExportGuestReceipts(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	phone, err := h.receipts.NormalizePhone(c.Params("phone"))
	if err != nil {
		return errorResponse(c, err)
	}

	list, err := h.receipts.ListGuestReceipts(c.UserContext(), phone)
	if err != nil {
		return errorResponse(c, err)
	}

	stmt := export.BuildStatement(phone, list, h.now())
	var buf bytes.Buffer
	if err := h.exports.Export(stmt, format, &buf); err != nil {
		h.logger.Error().Err(err).Str("guest", phone).Msg("❌ Export failed")
		return errorResponse(c, err)
	}

	filename := fmt.Sprintf("receipts-%s%s", utils.PhoneKey(phone), h.exports.GetFileExtension(format))
	c.Set(fiber.HeaderContentType, h.exports.GetContentType(format))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
