package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/handlers"
	"github.com/zaruud/zaruud-backend/internal/middleware"
	"github.com/zaruud/zaruud-backend/internal/models"
	"github.com/zaruud/zaruud-backend/internal/services"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	systemModeService *services.SystemModeService,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	moderationHandler *handlers.ModerationHandler,
	appealHandler *handlers.AppealHandler,
	feedHandler *handlers.FeedHandler,
	systemHandler *handlers.SystemHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health and system status (public)
	api.Get("/health", healthHandler.Check)
	api.Get("/system/status", systemHandler.Status)
	api.Get("/system/check/:action", systemHandler.CheckAction)

	// Discovery feed (public, browsing works in every mode)
	api.Get("/feed", feedHandler.Feed)

	// Engagement tracking: gated as a write so degraded modes stop the churn
	api.Post("/listings/:id/track/:counter",
		middleware.SystemGate(systemModeService, models.ActionEditListing),
		feedHandler.TrackEngagement)

	// Reports — protected, rate limited harder than the rest of the API,
	// and gated on the report action
	reports := api.Group("/listings/:id",
		middleware.JWTProtected(cfg))
	reports.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	reports.Post("/report",
		middleware.SystemGate(systemModeService, models.ActionReport),
		reportHandler.CreateReport)
	reports.Get("/report-status", reportHandler.ReportStatus)

	// Appeals — protected, gated on the appeal action
	api.Post("/moderation/:recordId/appeal",
		middleware.JWTProtected(cfg),
		middleware.SystemGate(systemModeService, models.ActionAppeal),
		appealHandler.Submit)
	api.Get("/appeals/:id", middleware.JWTProtected(cfg), appealHandler.Get)

	// Admin panel (protected + admin required, never gated)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/reports/hidden", reportHandler.ListHidden)
	admin.Post("/reports/:listingId/review", reportHandler.Review)
	admin.Post("/listings/:id/moderate", moderationHandler.Moderate)
	admin.Get("/moderation", moderationHandler.ListRecords)
	admin.Get("/moderation/:id", moderationHandler.GetRecord)
	admin.Post("/refunds/preview", moderationHandler.PreviewRefund)
	admin.Get("/appeals", appealHandler.ListPending)
	admin.Post("/appeals/:id/resolve", appealHandler.Resolve)
	admin.Post("/system/mode", systemHandler.SetMode)
}

// SetupMetrics exposes the Prometheus registry. Registered outside /api so
// scrapes bypass the rate limiter.
func SetupMetrics(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
