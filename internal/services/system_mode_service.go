package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/dto"
	"github.com/zaruud/zaruud-backend/internal/events"
	"github.com/zaruud/zaruud-backend/internal/metrics"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/gorm"
)

// allowedActions is the mode -> permitted-action matrix. Anything not listed
// for a degraded mode is blocked.
var allowedActions = map[models.SystemMode]map[models.UserAction]bool{
	models.ModeReadOnly: {
		models.ActionView:  true,
		models.ActionLogin: true,
	},
	models.ModeMaintenance: {
		models.ActionView: true,
	},
	models.ModeLockdown: {
		models.ActionView: true,
	},
}

var modeMessages = map[models.SystemMode]string{
	models.ModeReadOnly:    "The marketplace is temporarily read-only. Browsing still works.",
	models.ModeMaintenance: "Scheduled maintenance in progress. Please check back soon.",
	models.ModeLockdown:    "The marketplace is locked down. Only browsing is available.",
}

// SystemModeService gates user actions on the current operating mode. The
// active SystemStatus row is read through a TTL cache; SetMode invalidates
// the cache immediately so a mode change never waits out the TTL.
type SystemModeService struct {
	db        *gorm.DB
	ttl       time.Duration
	metrics   *metrics.ModerationMetrics
	publisher events.Publisher

	mu        sync.Mutex
	cached    *models.SystemStatus
	fetchedAt time.Time
}

func NewSystemModeService(db *gorm.DB, cfg *config.Config, m *metrics.ModerationMetrics, pub events.Publisher) *SystemModeService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &SystemModeService{db: db, ttl: cfg.StatusCacheTTL, metrics: m, publisher: pub}
}

// Current returns the active system status, cached for the TTL. A missing
// row degrades to normal mode rather than failing the caller's action.
func (s *SystemModeService) Current() *models.SystemStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		return s.cached
	}

	var status models.SystemStatus
	err := s.db.Where("is_active = ?", true).Order("enabled_at DESC").First(&status).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("failed to read system status", "error", err)
		}
		status = models.SystemStatus{Mode: models.ModeNormal, EnabledAt: time.Now()}
	}

	s.cached = &status
	s.fetchedAt = time.Now()
	return s.cached
}

// IsActionAllowed consults the cached mode. Normal mode allows everything.
func (s *SystemModeService) IsActionAllowed(action models.UserAction) dto.ActionCheckResponse {
	status := s.Current()
	if status.Mode == models.ModeNormal {
		return dto.ActionCheckResponse{Allowed: true}
	}
	if allowedActions[status.Mode][action] {
		return dto.ActionCheckResponse{Allowed: true}
	}

	reason := status.Message
	if reason == "" {
		reason = modeMessages[status.Mode]
	}
	return dto.ActionCheckResponse{Allowed: false, Reason: reason}
}

// SetMode deactivates the previous status row, inserts the new one, and
// invalidates the cache so the change is visible immediately.
func (s *SystemModeService) SetMode(mode models.SystemMode, message string, scheduledEnd *time.Time) (*models.SystemStatus, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid system mode: %s", mode)
	}

	status := &models.SystemStatus{
		Mode:         mode,
		Message:      message,
		IsActive:     true,
		EnabledAt:    time.Now(),
		ScheduledEnd: scheduledEnd,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SystemStatus{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(status).Error
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = status
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSystemMode(string(mode))
	}
	if err := s.publisher.Publish(events.Event{
		Type:       events.TypeSystemModeSet,
		SystemMode: mode,
	}); err != nil {
		slog.Error("failed to publish system mode event", "error", err)
	}

	slog.Info("system mode changed", "mode", mode, "message", message)
	return status, nil
}

// ExpireScheduled reverts to normal mode when the active status has a
// scheduled end in the past. Called by the cron sweep.
func (s *SystemModeService) ExpireScheduled() error {
	status := s.Current()
	if status.Mode == models.ModeNormal || status.ScheduledEnd == nil {
		return nil
	}
	if time.Now().Before(*status.ScheduledEnd) {
		return nil
	}

	_, err := s.SetMode(models.ModeNormal, "", nil)
	return err
}
