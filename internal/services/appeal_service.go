package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/events"
	"github.com/zaruud/zaruud-backend/internal/metrics"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAppealNotFound       = errors.New("appeal not found")
	ErrAppealNotAllowed     = errors.New("this violation type cannot be appealed")
	ErrAppealDeadlinePassed = errors.New("the appeal deadline has passed")
	ErrAppealExists         = errors.New("an appeal already exists for this record")
	ErrAppealResolved       = errors.New("appeal has already been resolved")
)

// AppealService runs the appeal state machine:
//
//	none -> pending -> approved | rejected
//
// approved and rejected are terminal; approval is the only path that returns
// a deleted or suspended listing to active.
type AppealService struct {
	db        *gorm.DB
	metrics   *metrics.ModerationMetrics
	publisher events.Publisher
}

func NewAppealService(db *gorm.DB, m *metrics.ModerationMetrics, pub events.Publisher) *AppealService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &AppealService{db: db, metrics: m, publisher: pub}
}

// SubmitAppeal creates the single appeal for a moderation record. All
// preconditions must hold: the record exists, its rule allows appeals, the
// deadline has not passed, and no appeal exists yet.
func (s *AppealService) SubmitAppeal(recordID, submitterID uuid.UUID, reason string, evidence []string) (*models.Appeal, error) {
	var appeal *models.Appeal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var record models.ModerationRecord
		if err := tx.First(&record, "id = ?", recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		if !RuleFor(record.ViolationType).AppealAllowed {
			return ErrAppealNotAllowed
		}
		if time.Now().After(record.AppealDeadline) {
			return ErrAppealDeadlinePassed
		}
		if record.AppealStatus != models.AppealNone {
			return ErrAppealExists
		}

		var evidenceJSON datatypes.JSON
		if len(evidence) > 0 {
			raw, err := json.Marshal(evidence)
			if err != nil {
				return err
			}
			evidenceJSON = datatypes.JSON(raw)
		}

		appeal = &models.Appeal{
			ModerationRecordID: record.ID,
			SubmitterID:        submitterID,
			Reason:             reason,
			Evidence:           evidenceJSON,
			Status:             models.AppealPending,
		}
		if err := tx.Create(appeal).Error; err != nil {
			return err
		}

		return tx.Model(&record).
			Update("appeal_status", models.AppealPending).Error
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AppealsSubmittedTotal.Inc()
	}
	s.publish(events.Event{
		Type:               events.TypeAppealSubmitted,
		AppealID:           appeal.ID,
		ModerationRecordID: appeal.ModerationRecordID,
		AppealStatus:       models.AppealPending,
	})
	return appeal, nil
}

// ResolveAppeal finalizes a pending appeal and mirrors the outcome onto the
// moderation record. Approval restores the listing exactly: status active,
// deletion/suspension marks cleared, restored_at stamped. Rejection leaves
// the listing untouched.
func (s *AppealService) ResolveAppeal(appealID uuid.UUID, approved bool, reviewerNote string) error {
	var resolved models.Appeal
	var listingID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var appeal models.Appeal
		if err := tx.First(&appeal, "id = ?", appealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppealNotFound
			}
			return err
		}
		if appeal.Status.Terminal() {
			return ErrAppealResolved
		}

		var record models.ModerationRecord
		if err := tx.First(&record, "id = ?", appeal.ModerationRecordID).Error; err != nil {
			return err
		}
		listingID = record.ListingID

		now := time.Now()
		status := models.AppealRejected
		if approved {
			status = models.AppealApproved
		}

		if err := tx.Model(&appeal).Updates(map[string]interface{}{
			"status":        status,
			"reviewer_note": reviewerNote,
			"resolved_at":   now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&record).Updates(map[string]interface{}{
			"appeal_status":      status,
			"appeal_note":        reviewerNote,
			"appeal_resolved_at": now,
		}).Error; err != nil {
			return err
		}

		if approved {
			if err := tx.Model(&models.Listing{}).Where("id = ?", record.ListingID).
				Updates(map[string]interface{}{
					"status":          models.ListingActive,
					"mod_deleted_at":  nil,
					"suspended_at":    nil,
					"deletion_reason": nil,
					"needs_edit":      false,
					"restored_at":     now,
				}).Error; err != nil {
				return err
			}
		}

		appeal.Status = status
		resolved = appeal
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordAppealResolved(approved)
	}
	s.publish(events.Event{
		Type:               events.TypeAppealResolved,
		AppealID:           resolved.ID,
		ModerationRecordID: resolved.ModerationRecordID,
		ListingID:          listingID,
		AppealStatus:       resolved.Status,
	})
	if approved {
		s.publish(events.Event{Type: events.TypeListingRestored, ListingID: listingID})
	}
	return nil
}

// GetAppeal looks up one appeal.
func (s *AppealService) GetAppeal(id uuid.UUID) (*models.Appeal, error) {
	var appeal models.Appeal
	if err := s.db.First(&appeal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppealNotFound
		}
		return nil, err
	}
	return &appeal, nil
}

// ListPending returns appeals awaiting review, oldest first.
func (s *AppealService) ListPending(limit, offset int) ([]models.Appeal, int64, error) {
	var appeals []models.Appeal
	var total int64

	query := s.db.Model(&models.Appeal{}).
		Where("status IN ?", []models.AppealStatus{models.AppealPending, models.AppealReviewing})
	query.Count(&total)

	err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&appeals).Error
	if err != nil {
		return nil, 0, err
	}
	return appeals, total, nil
}

func (s *AppealService) publish(event events.Event) {
	if err := s.publisher.Publish(event); err != nil {
		slog.Error("failed to publish appeal event", "type", event.Type, "error", err)
	}
}
