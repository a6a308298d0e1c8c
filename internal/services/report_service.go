package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/dto"
	"github.com/zaruud/zaruud-backend/internal/events"
	"github.com/zaruud/zaruud-backend/internal/metrics"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrReportNotFound    = errors.New("report record not found")
	ErrNotAwaitingReview = errors.New("listing is not awaiting review")
	ErrAlreadyDecided    = errors.New("report has already been decided")
)

// ReportService aggregates community reports per listing and drives the
// hide/delete thresholds. The hide threshold is an automatic intermediate
// state; the delete threshold is automatic and terminal.
type ReportService struct {
	db        *gorm.DB
	cfg       *config.Config
	metrics   *metrics.ModerationMetrics
	publisher events.Publisher
}

func NewReportService(db *gorm.DB, cfg *config.Config, m *metrics.ModerationMetrics, pub events.Publisher) *ReportService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &ReportService{db: db, cfg: cfg, metrics: m, publisher: pub}
}

// ReportListing appends one user's report. Duplicate reports are a defined
// outcome (Success=false), not an error. The insert and the counter increment
// run in one transaction so concurrent reports are all counted.
func (s *ReportService) ReportListing(listingID, reporterID uuid.UUID, reason models.ViolationType, description string) (*dto.ReportResult, error) {
	if !reason.Valid() {
		return nil, fmt.Errorf("invalid report reason: %s", reason)
	}

	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	var result dto.ReportResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var record models.ReportRecord
		if err := tx.Where(models.ReportRecord{ListingID: listingID}).
			FirstOrCreate(&record).Error; err != nil {
			return err
		}

		if record.Status == models.ReportDeleted {
			result = dto.ReportResult{
				Success:      false,
				Message:      "This listing has already been removed",
				TotalReports: record.TotalReports,
				Status:       record.Status,
			}
			return nil
		}

		var existing models.ListingReport
		err := tx.Where("listing_id = ? AND reporter_id = ?", listingID, reporterID).
			First(&existing).Error
		if err == nil {
			if s.metrics != nil {
				s.metrics.ReportsDuplicateTotal.Inc()
			}
			result = dto.ReportResult{
				Success:      false,
				Message:      "You have already reported this listing",
				TotalReports: record.TotalReports,
				Status:       record.Status,
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		report := models.ListingReport{
			ListingID:   listingID,
			ReporterID:  reporterID,
			Reason:      reason,
			Description: description,
		}
		// The unique index on (listing_id, reporter_id) backstops the
		// existence check above against concurrent submissions.
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ReportRecord{}).Where("id = ?", record.ID).
			UpdateColumn("total_reports", gorm.Expr("total_reports + 1")).Error; err != nil {
			return err
		}
		if err := tx.First(&record, "id = ?", record.ID).Error; err != nil {
			return err
		}

		if err := s.applyThresholds(tx, &record); err != nil {
			return err
		}

		result = dto.ReportResult{
			Success:      true,
			Message:      "Report submitted. Thank you for keeping the marketplace safe.",
			TotalReports: record.TotalReports,
			Status:       record.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		if s.metrics != nil {
			s.metrics.RecordReport(string(reason))
		}
		s.publish(events.Event{
			Type:         events.TypeListingReported,
			ListingID:    listingID,
			OwnerID:      listing.OwnerID,
			TotalReports: result.TotalReports,
		})
	}
	return &result, nil
}

// applyThresholds transitions the record (and its listing) when the new total
// crosses a threshold. Runs inside the report transaction.
func (s *ReportService) applyThresholds(tx *gorm.DB, record *models.ReportRecord) error {
	now := time.Now()

	if record.TotalReports >= s.cfg.DeleteThreshold && record.Status != models.ReportDeleted {
		record.Status = models.ReportDeleted
		if record.HiddenAt == nil {
			record.HiddenAt = &now
		}
		if err := tx.Model(record).Updates(map[string]interface{}{
			"status":    models.ReportDeleted,
			"hidden_at": record.HiddenAt,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Listing{}).Where("id = ?", record.ListingID).
			Updates(map[string]interface{}{
				"status":            models.ListingDeleted,
				"hidden_by_reports": true,
			}).Error; err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ListingsDeletedTotal.WithLabelValues("threshold").Inc()
		}
		s.publish(events.Event{
			Type:         events.TypeListingDeleted,
			ListingID:    record.ListingID,
			TotalReports: record.TotalReports,
		})
		return nil
	}

	if record.TotalReports >= s.cfg.HideThreshold && record.Status == models.ReportActive {
		record.Status = models.ReportHidden
		record.HiddenAt = &now
		if err := tx.Model(record).Updates(map[string]interface{}{
			"status":    models.ReportHidden,
			"hidden_at": now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Listing{}).Where("id = ?", record.ListingID).
			UpdateColumn("hidden_by_reports", true).Error; err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ListingsHiddenTotal.Inc()
		}
		s.publish(events.Event{
			Type:         events.TypeListingHidden,
			ListingID:    record.ListingID,
			TotalReports: record.TotalReports,
		})
	}
	return nil
}

// HasUserReported is the membership check behind the report button.
func (s *ReportService) HasUserReported(listingID, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.ListingReport{}).
		Where("listing_id = ? AND reporter_id = ?", listingID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AdminReview resolves a hidden listing. The first decision is final: a
// second call returns ErrAlreadyDecided regardless of the new decision.
func (s *ReportService) AdminReview(listingID uuid.UUID, decision models.AdminDecision) error {
	if decision != models.DecisionShow && decision != models.DecisionDelete {
		return fmt.Errorf("invalid decision: %s", decision)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var record models.ReportRecord
		if err := tx.Where("listing_id = ?", listingID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		if record.AdminDecision != nil {
			return ErrAlreadyDecided
		}
		if record.Status != models.ReportHidden {
			return ErrNotAwaitingReview
		}

		now := time.Now()
		updates := map[string]interface{}{
			"admin_decision": decision,
			"decided_at":     now,
		}

		switch decision {
		case models.DecisionShow:
			updates["status"] = models.ReportActive
			if err := tx.Model(&models.Listing{}).Where("id = ?", record.ListingID).
				UpdateColumn("hidden_by_reports", false).Error; err != nil {
				return err
			}
		case models.DecisionDelete:
			updates["status"] = models.ReportDeleted
			if err := tx.Model(&models.Listing{}).Where("id = ?", record.ListingID).
				Update("status", models.ListingDeleted).Error; err != nil {
				return err
			}
			if s.metrics != nil {
				s.metrics.ListingsDeletedTotal.WithLabelValues("admin").Inc()
			}
		}

		if err := tx.Model(&record).Updates(updates).Error; err != nil {
			return err
		}

		if s.metrics != nil {
			s.metrics.AdminDecisionsTotal.WithLabelValues(string(decision)).Inc()
		}
		eventType := events.TypeListingRestored
		if decision == models.DecisionDelete {
			eventType = events.TypeListingDeleted
		}
		s.publish(events.Event{Type: eventType, ListingID: record.ListingID})
		return nil
	})
}

// ListHidden returns report records awaiting an admin decision.
func (s *ReportService) ListHidden(limit, offset int) ([]models.ReportRecord, int64, error) {
	var records []models.ReportRecord
	var total int64

	query := s.db.Model(&models.ReportRecord{}).Where("status = ?", models.ReportHidden)
	query.Count(&total)

	err := query.Order("hidden_at ASC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *ReportService) publish(event events.Event) {
	if err := s.publisher.Publish(event); err != nil {
		slog.Error("failed to publish report event", "type", event.Type, "error", err)
	}
}
