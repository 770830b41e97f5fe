package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/auth"
)

// RegisterRoutes mounts the rewards API. Staff routes require a Bearer
// token when jwtService is non-nil; exports additionally need a manager and
// job routes an admin. jobs may be nil.
func RegisterRoutes(app fiber.Router, receipts *ReceiptHandler, webhook *WebhookHandler, health *HealthHandler, qr *QRHandler, jobs *JobsHandler, jwtService *auth.JWTService) {
	app.Get("/health", health.GetHealth)

	app.Get("/webhook/whatsapp", webhook.Verify)
	app.Post("/webhook/whatsapp", webhook.Receive)

	app.Post("/receipts/process", receipts.ProcessReceipt)

	app.Get("/qr/table-card", qr.GetTableCard)

	staff := auth.AuthMiddleware(jwtService)
	app.Post("/receipts/upload", staff, receipts.UploadReceipt)
	app.Post("/receipts/parse", staff, receipts.ParseText)
	app.Get("/receipts/:key", staff, receipts.GetReceipt)
	app.Get("/guests/:phone/receipts", staff, receipts.ListGuestReceipts)
	app.Get("/guests/:phone/summary", staff, receipts.GuestSummary)
	app.Get("/guests/:phone/receipts/export",
		staff,
		auth.RequireRole(auth.RoleManager, auth.RoleAdmin),
		receipts.ExportGuestReceipts,
	)

	// Job inspection needs the postgres queue
	if jobs == nil {
		return
	}
	admin := auth.RequireRole(auth.RoleAdmin)
	app.Get("/jobs", staff, admin, jobs.ListJobs)
	app.Get("/jobs/stats", staff, admin, jobs.GetStats)
	app.Get("/jobs/:id", staff, admin, jobs.GetJob)
	app.Post("/jobs/:id/cancel", staff, admin, jobs.CancelJob)
}
