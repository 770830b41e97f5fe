package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/jobs"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/handlers"
	rewardjobs "github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/jobs"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/repositories"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/services"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/logger"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	log := logger.Init(cfg.Env, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting receipt-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	store, db, err := openStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to open storage")
	}
	defer store.Close()
	if db != nil {
		defer db.Close()
	}

	// Collaborators
	ocrService := ocr.NewService(newOCRProvider(cfg), ocr.Options{
		Timeout:    cfg.OCRTimeout,
		MaxRetries: cfg.OCRMaxRetries,
		Backoff:    cfg.OCRBackoff,
	}, log)

	uploadProvider, err := newUploadProvider(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize upload provider")
	}
	uploadService := upload.NewService(uploadProvider, log)
	waService := whatsapp.NewService(newWhatsAppProvider(cfg, log), log)

	log.Info().
		Str("ocr", ocrService.GetProviderName()).
		Str("upload", uploadService.GetProviderName()).
		Str("whatsapp", waService.GetProviderName()).
		Str("docstore", cfg.DocStoreDriver).
		Msg("🔌 Providers ready")

	// Receipt pipeline
	parser := receipt.NewParser(receipt.WithLogger(log))
	receiptRepo := repositories.NewReceiptRepo(store)
	receiptService := services.NewReceiptService(ocrService, parser, receiptRepo, cfg.DefaultCountryCode, log)

	// Jobs: postgres queue when a database is configured, in-process otherwise
	var queue rewardjobs.Enqueuer
	var jobService *jobs.Service
	var inline *jobs.InlineQueue
	if db != nil {
		jobService = jobs.NewService(db.GORM, log)
		queue = jobService
	} else {
		inline = jobs.NewInlineQueue(5*time.Minute, log)
		queue = inline
		log.Warn().Msg("⚠️ No DATABASE_URL, receipt jobs run in-process")
	}

	processHandler := rewardjobs.NewProcessHandler(waService, uploadService, receiptService, waService, queue, log)
	persistHandler := rewardjobs.NewPersistHandler(receiptService, waService, log)

	sched := scheduler.New(log)
	if jobService != nil {
		jobService.RegisterWorker(jobs.WorkerConfig{
			Queue:        rewardjobs.Queue,
			Concurrency:  cfg.JobWorkers,
			PollInterval: cfg.JobPollInterval,
			Timeout:      5 * time.Minute,
		}, processHandler, persistHandler)
		if err := jobService.StartWorkers(ctx); err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to start workers")
		}
		defer jobService.StopWorkers()

		err := sched.AddTask("jobs.cleanup", "0 30 3 * * *", func(ctx context.Context) error {
			n, err := jobService.Cleanup(ctx, cfg.JobRetention)
			if err == nil && n > 0 {
				log.Info().Int64("deleted", n).Msg("🧹 Old jobs removed")
			}
			return err
		})
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to schedule job cleanup")
		}
	} else {
		inline.RegisterHandler(processHandler)
		inline.RegisterHandler(persistHandler)
		defer inline.Wait()
	}
	sched.Start()
	defer sched.Stop()

	// Staff auth
	var jwtService *auth.JWTService
	if cfg.JWTSecret != "" {
		jwtService = auth.NewJWTService(cfg.JWTSecret, cfg.JWTDuration)
	} else {
		log.Warn().Msg("⚠️ JWT_SECRET not set, staff endpoints are open")
	}

	// Handlers
	receiptHandler := handlers.NewReceiptHandler(receiptService, uploadService, export.NewService(), validator.New(), log)
	webhookHandler := handlers.NewWebhookHandler(cfg.WhatsAppVerifyToken, queue, waService, log)
	healthHandler := handlers.NewHealthHandler(ocrService.GetProviderName(), waService.GetProviderName(), uploadService.GetProviderName())
	qrHandler := handlers.NewQRHandler(cfg.WhatsAppDisplayNumber)
	var jobsHandler *handlers.JobsHandler
	if jobService != nil {
		jobsHandler = handlers.NewJobsHandler(jobService)
	}

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Resto Engage Receipt API",
		BodyLimit: 20 * 1024 * 1024,
	})
	app.Use(cors.New())
	app.Use(requestLogger(log))

	if local, ok := uploadProvider.(*upload.LocalProvider); ok && cfg.PublicBaseURL != "" {
		app.Static("/uploads", local.Root())
	}

	handlers.RegisterRoutes(app, receiptHandler, webhookHandler, healthHandler, qrHandler, jobsHandler, jwtService)

	go func() {
		<-ctx.Done()
		log.Info().Msg("🛑 Shutting down receipt-api")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("❌ Shutdown failed")
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("❌ Server stopped")
	}
}

// requestLogger logs one line per request and stores the logger in the
// request context.
func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := logger.WithFields(log, map[string]interface{}{
			"request_id": uuid.NewString(),
			"path":       c.Path(),
		})
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))

		err := c.Next()

		reqLog.Debug().
			Str("method", c.Method()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("http request")
		return err
	}
}
