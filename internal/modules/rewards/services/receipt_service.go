package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/repositories"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/utils"
)

// TextExtractor turns a receipt image reference into OCR text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageRef string) (string, error)
}

// ReceiptParser runs the strategy cascade.
type ReceiptParser interface {
	Parse(ctx context.Context, text string) (*receipt.ParsedReceipt, error)
}

// ReceiptService is the receipt pipeline: OCR, cascade, enrichment, persistence.
type ReceiptService struct {
	ocr         TextExtractor
	parser      ReceiptParser
	repo        repositories.ReceiptRepo
	countryCode string
	now         func() time.Time
	newKey      func() string
	logger      zerolog.Logger
}

// ServiceOption customises a ReceiptService.
type ServiceOption func(*ReceiptService)

// WithClock sets the clock used for ProcessedAt.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ReceiptService) { s.now = now }
}

// WithKeyGenerator sets the generator for receipts without an invoice number.
func WithKeyGenerator(newKey func() string) ServiceOption {
	return func(s *ReceiptService) { s.newKey = newKey }
}

func NewReceiptService(ocr TextExtractor, parser ReceiptParser, repo repositories.ReceiptRepo, countryCode string, logger zerolog.Logger, opts ...ServiceOption) *ReceiptService {
	s := &ReceiptService{
		ocr:         ocr,
		parser:      parser,
		repo:        repo,
		countryCode: countryCode,
		now:         time.Now,
		newKey:      uuid.NewString,
		logger:      logger.With().Str("component", "receipt_pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessReceipt reads the receipt at imageURL for the guest callerID and
// stores it. Errors match receipt.ErrOcrFailed, receipt.ErrNoStrategySucceeded
// or receipt.ErrPersistenceFailed; a *receipt.PersistenceError carries the
// accepted receipt so the write can be retried with RetryPersist.
func (s *ReceiptService) ProcessReceipt(ctx context.Context, imageURL, callerID string) (*receipt.AcceptedReceipt, error) {
	phone, err := utils.NormalizePhone(callerID, s.countryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, callerID)
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, fmt.Errorf("%w: empty image reference", receipt.ErrOcrFailed)
	}

	log := s.logger.With().Str("guest", phone).Logger()
	log.Info().Str("image", imageURL).Msg("📸 Processing receipt")

	text, err := s.ocr.ExtractText(ctx, imageURL)
	if err != nil {
		log.Warn().Err(err).Msg("❌ OCR failed")
		return nil, fmt.Errorf("%w: %w", receipt.ErrOcrFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text detected", receipt.ErrOcrFailed)
	}

	parsed, err := s.parser.Parse(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("❌ Receipt not recognised")
		return nil, err
	}

	key := s.receiptKey(parsed)
	accepted := receipt.Accept(parsed, key, imageURL, phone, s.now().UTC())

	if err := s.repo.Save(ctx, accepted); err != nil {
		log.Error().Err(err).Str("receipt_key", key).Msg("❌ Failed to store receipt")
		return nil, &receipt.PersistenceError{Receipt: accepted, Cause: err}
	}

	log.Info().
		Str("receipt_key", key).
		Str("strategy", accepted.Strategy).
		Float64("total", accepted.TotalAmount).
		Msg("✅ Receipt stored")
	return accepted, nil
}

// RetryPersist repeats only the write of an already accepted receipt.
func (s *ReceiptService) RetryPersist(ctx context.Context, accepted *receipt.AcceptedReceipt) error {
	if accepted == nil || accepted.ReceiptKey == "" {
		return fmt.Errorf("%w: nothing to persist", receipt.ErrPersistenceFailed)
	}
	if err := s.repo.Save(ctx, accepted); err != nil {
		return &receipt.PersistenceError{Receipt: accepted, Cause: err}
	}
	s.logger.Info().Str("receipt_key", accepted.ReceiptKey).Msg("✅ Receipt stored on retry")
	return nil
}

// ParseText runs the cascade without OCR or persistence.
func (s *ReceiptService) ParseText(ctx context.Context, text string) (*receipt.ParsedReceipt, error) {
	return s.parser.Parse(ctx, text)
}

func (s *ReceiptService) GetReceipt(ctx context.Context, key string) (*receipt.AcceptedReceipt, error) {
	return s.repo.Get(ctx, key)
}

// ListGuestReceipts accepts the phone number in any form NormalizePhone does.
func (s *ReceiptService) ListGuestReceipts(ctx context.Context, phone string) ([]*receipt.AcceptedReceipt, error) {
	normalized, err := utils.NormalizePhone(phone, s.countryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, phone)
	}
	return s.repo.ListByGuest(ctx, normalized)
}

// NormalizePhone exposes the service's phone normalisation to callers.
func (s *ReceiptService) NormalizePhone(phone string) (string, error) {
	return utils.NormalizePhone(phone, s.countryCode)
}

// receiptKey is the sanitised invoice number, or a generated id.
func (s *ReceiptService) receiptKey(p *receipt.ParsedReceipt) string {
	if p.InvoiceNumber != nil {
		if key := repositories.SanitizeKey(*p.InvoiceNumber); key != "" {
			return key
		}
	}
	return s.newKey()
}

// IsGuestError reports whether err is the guest's fault (bad input or an
// unreadable receipt) rather than an outage.
func IsGuestError(err error) bool {
	return errors.Is(err, utils.ErrInvalidPhone) ||
		errors.Is(err, receipt.ErrOcrFailed) ||
		errors.Is(err, receipt.ErrNoStrategySucceeded)
}
