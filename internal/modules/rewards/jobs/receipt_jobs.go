package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	corejobs "github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/jobs"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/services"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/utils"
)

const (
	JobProcessReceipt = "receipt.process"
	JobPersistReceipt = "receipt.persist"

	// Queue is where receipt jobs run.
	Queue = "receipts"
)

// ProcessPayload is one inbound receipt photo. Either MediaID (WhatsApp
// media still to download) or ImageURL (already archived) is set.
type ProcessPayload struct {
	MessageID string `json:"message_id,omitempty"`
	From      string `json:"from"`
	MediaID   string `json:"media_id,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

type MediaSource interface {
	DownloadMedia(ctx context.Context, mediaID string) (*whatsapp.Media, error)
}

type Archiver interface {
	Upload(ctx context.Context, file io.Reader, filename string, options *upload.UploadOptions) (*upload.UploadResult, error)
}

type Replier interface {
	SendMessage(ctx context.Context, to, message string) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, owner, jobType string, payload interface{}, opts ...corejobs.EnqueueOptions) (*corejobs.Job, error)
}

// Pipeline is the part of services.ReceiptService the jobs use.
type Pipeline interface {
	ProcessReceipt(ctx context.Context, imageURL, callerID string) (*receipt.AcceptedReceipt, error)
	RetryPersist(ctx context.Context, accepted *receipt.AcceptedReceipt) error
}

// EnqueueOptions are the options used for every receipt job.
func EnqueueOptions() corejobs.EnqueueOptions {
	opts := corejobs.DefaultEnqueueOptions()
	opts.Queue = Queue
	opts.Priority = corejobs.PriorityHigh
	return opts
}

// ProcessHandler downloads, archives and processes one receipt photo, then
// replies to the guest.
type ProcessHandler struct {
	media    MediaSource
	archive  Archiver
	pipeline Pipeline
	replies  Replier
	queue    Enqueuer
	logger   zerolog.Logger
}

func NewProcessHandler(media MediaSource, archive Archiver, pipeline Pipeline, replies Replier, queue Enqueuer, logger zerolog.Logger) *ProcessHandler {
	return &ProcessHandler{
		media:    media,
		archive:  archive,
		pipeline: pipeline,
		replies:  replies,
		queue:    queue,
		logger:   logger.With().Str("job", JobProcessReceipt).Logger(),
	}
}

func (h *ProcessHandler) GetType() string { return JobProcessReceipt }

// Handle returns an error only for failures worth retrying (media download,
// archive upload, enqueueing the persistence retry). Unreadable receipts are
// answered and completed.
func (h *ProcessHandler) Handle(ctx context.Context, job *corejobs.Job) error {
	var p ProcessPayload
	if err := job.DecodePayload(&p); err != nil {
		return err
	}

	imageURL := p.ImageURL
	if imageURL == "" {
		ref, err := h.archiveMedia(ctx, p)
		if err != nil {
			return err
		}
		imageURL = ref
	}

	accepted, err := h.pipeline.ProcessReceipt(ctx, imageURL, p.From)
	var pe *receipt.PersistenceError
	switch {
	case err == nil:
		h.reply(ctx, p.From, services.ReceiptAcceptedMessage(accepted))
		return nil

	case errors.As(err, &pe):
		if _, qerr := h.queue.Enqueue(ctx, job.Owner, JobPersistReceipt, pe.Receipt, EnqueueOptions()); qerr != nil {
			return fmt.Errorf("enqueue persistence retry for %s: %w", pe.Receipt.ReceiptKey, qerr)
		}
		h.logger.Warn().Err(pe.Cause).Str("receipt_key", pe.Receipt.ReceiptKey).Msg("⏳ Persistence retry scheduled")
		h.reply(ctx, p.From, services.ReceiptFailedMessage(err))
		return nil

	case services.IsGuestError(err):
		h.reply(ctx, p.From, services.ReceiptFailedMessage(err))
		return nil

	default:
		return err
	}
}

func (h *ProcessHandler) archiveMedia(ctx context.Context, p ProcessPayload) (string, error) {
	if p.MediaID == "" {
		return "", fmt.Errorf("payload has neither media_id nor image_url")
	}

	media, err := h.media.DownloadMedia(ctx, p.MediaID)
	if err != nil {
		return "", fmt.Errorf("download media %s: %w", p.MediaID, err)
	}
	if media.MimeType == "" {
		media.MimeType = p.MimeType
	}

	folder := "receipts"
	if phone, err := utils.NormalizePhone(p.From, ""); err == nil {
		folder = "receipts/" + utils.PhoneKey(phone)
	}

	res, err := h.archive.Upload(ctx, bytes.NewReader(media.Data), p.MediaID+media.Extension(), &upload.UploadOptions{
		Folder:   folder,
		PublicID: p.MediaID,
	})
	if err != nil {
		return "", fmt.Errorf("archive media %s: %w", p.MediaID, err)
	}
	return res.Ref(), nil
}

func (h *ProcessHandler) reply(ctx context.Context, to, msg string) {
	if err := h.replies.SendMessage(ctx, to, msg); err != nil {
		h.logger.Warn().Err(err).Str("to", to).Msg("⚠️ Failed to send reply")
	}
}

// PersistHandler retries the write of an accepted receipt.
type PersistHandler struct {
	pipeline Pipeline
	replies  Replier
	logger   zerolog.Logger
}

func NewPersistHandler(pipeline Pipeline, replies Replier, logger zerolog.Logger) *PersistHandler {
	return &PersistHandler{
		pipeline: pipeline,
		replies:  replies,
		logger:   logger.With().Str("job", JobPersistReceipt).Logger(),
	}
}

func (h *PersistHandler) GetType() string { return JobPersistReceipt }

func (h *PersistHandler) Handle(ctx context.Context, job *corejobs.Job) error {
	var accepted receipt.AcceptedReceipt
	if err := job.DecodePayload(&accepted); err != nil {
		return err
	}

	if err := h.pipeline.RetryPersist(ctx, &accepted); err != nil {
		return err
	}

	if err := h.replies.SendMessage(ctx, accepted.GuestPhoneNumber, services.ReceiptAcceptedMessage(&accepted)); err != nil {
		h.logger.Warn().Err(err).Msg("⚠️ Failed to send reply")
	}
	return nil
}
