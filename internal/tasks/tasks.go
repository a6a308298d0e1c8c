package tasks

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/models"
	"github.com/zaruud/zaruud-backend/internal/services"
	"gorm.io/gorm"
)

// Runner owns the background cron jobs: expiring stale listings and reverting
// scheduled system modes.
type Runner struct {
	cron *cron.Cron
	db   *gorm.DB
	cfg  *config.Config
	mode *services.SystemModeService
}

func NewRunner(db *gorm.DB, cfg *config.Config, mode *services.SystemModeService) *Runner {
	return &Runner{
		cron: cron.New(),
		db:   db,
		cfg:  cfg,
		mode: mode,
	}
}

func (r *Runner) Start() error {
	// Hourly: expire listings past their TTL.
	if _, err := r.cron.AddFunc("@hourly", r.expireListings); err != nil {
		return err
	}
	// Every minute: revert a scheduled degraded mode that has ended.
	if _, err := r.cron.AddFunc("@every 1m", r.expireSystemMode); err != nil {
		return err
	}

	r.cron.Start()
	slog.Info("background tasks started")
	return nil
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	slog.Info("background tasks stopped")
}

// expireListings flips active listings older than the TTL to expired. Hidden
// and moderated listings are left alone so their own lifecycles stay intact.
func (r *Runner) expireListings() {
	cutoff := time.Now().AddDate(0, 0, -r.cfg.ListingTTLDays)

	result := r.db.Model(&models.Listing{}).
		Where("status = ? AND created_at < ?", models.ListingActive, cutoff).
		Update("status", models.ListingExpired)
	if result.Error != nil {
		slog.Error("listing expiry sweep failed", "error", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		slog.Info("listings expired", "count", result.RowsAffected)
	}
}

func (r *Runner) expireSystemMode() {
	if err := r.mode.ExpireScheduled(); err != nil {
		slog.Error("system mode expiry failed", "error", err)
	}
}
