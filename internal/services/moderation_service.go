package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/events"
	"github.com/zaruud/zaruud-backend/internal/metrics"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("moderation record not found")

// ModerationService executes rule-driven enforcement actions against listings
// and writes the immutable audit trail.
type ModerationService struct {
	db        *gorm.DB
	cfg       *config.Config
	metrics   *metrics.ModerationMetrics
	publisher events.Publisher
}

func NewModerationService(db *gorm.DB, cfg *config.Config, m *metrics.ModerationMetrics, pub events.Publisher) *ModerationService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &ModerationService{db: db, cfg: cfg, metrics: m, publisher: pub}
}

// ModerateListing applies the rule for violationType to the listing and
// persists a ModerationRecord. Returns ErrListingNotFound without creating
// any record when the listing does not exist.
func (s *ModerationService) ModerateListing(listingID uuid.UUID, violationType models.ViolationType, moderatorNote string) (*models.ModerationRecord, error) {
	if !violationType.Valid() {
		return nil, fmt.Errorf("invalid violation type: %s", violationType)
	}
	rule := RuleFor(violationType)

	var record *models.ModerationRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}

		now := time.Now()
		record = &models.ModerationRecord{
			ID:             uuid.New(),
			ListingID:      listing.ID,
			ListingTitle:   listing.Title,
			OwnerID:        listing.OwnerID,
			ViolationType:  violationType,
			ActionTaken:    rule.Action,
			RefundPolicy:   rule.RefundPolicy,
			ModeratorNote:  moderatorNote,
			AppealDeadline: now.Add(time.Duration(s.cfg.AppealWindowDays) * 24 * time.Hour),
			AppealStatus:   models.AppealNone,
		}

		switch rule.Action {
		case models.ActionDelete:
			if err := tx.Model(&listing).Updates(map[string]interface{}{
				"status":               models.ListingDeleted,
				"mod_deleted_at":       now,
				"deletion_reason":      violationType,
				"moderation_record_id": record.ID,
			}).Error; err != nil {
				return err
			}
		case models.ActionSuspend:
			if err := tx.Model(&listing).Updates(map[string]interface{}{
				"status":               models.ListingSuspended,
				"suspended_at":         now,
				"moderation_record_id": record.ID,
			}).Error; err != nil {
				return err
			}
		case models.ActionWarn, models.ActionRequestEdit:
			// The listing stays visible; the owner gets a warning entry.
			warnings, err := appendWarning(listing.Warnings, models.ListingWarning{
				ViolationType: violationType,
				Note:          moderatorNote,
				IssuedAt:      now,
			})
			if err != nil {
				return err
			}
			updates := map[string]interface{}{
				"warnings":             warnings,
				"moderation_record_id": record.ID,
			}
			if rule.Action == models.ActionRequestEdit {
				updates["needs_edit"] = true
			}
			if err := tx.Model(&listing).Updates(updates).Error; err != nil {
				return err
			}
		case models.ActionApprove:
			// Explicit clean bill: record only, listing untouched.
		}

		if rule.RefundPolicy != models.RefundNone {
			amount, err := s.applyRefund(tx, listing.OwnerID, rule, now)
			if err != nil {
				return err
			}
			record.RefundAmount = amount
		}

		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordModeration(string(violationType), string(rule.Action))
		if record.RefundAmount > 0 {
			s.metrics.RefundAmountTotal.Add(float64(record.RefundAmount))
		}
	}
	s.publish(events.Event{
		Type:               events.TypeListingModerated,
		ListingID:          record.ListingID,
		OwnerID:            record.OwnerID,
		ModerationRecordID: record.ID,
		ViolationType:      violationType,
		ActionTaken:        rule.Action,
	})
	return record, nil
}

// applyRefund computes and books a refund against the owner's active VIP
// subscription. A subscription is refunded at most once (RefundedAt guard),
// so replaying a moderation action cannot pay twice. No active subscription
// means no refund, which is not an error.
func (s *ModerationService) applyRefund(tx *gorm.DB, ownerID uuid.UUID, rule ViolationRule, now time.Time) (int64, error) {
	var sub models.VipSubscription
	err := tx.Where("user_id = ? AND status = ? AND refunded_at IS NULL", ownerID, "active").
		Order("ends_at DESC").First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	totalDays := int(sub.EndsAt.Sub(sub.StartsAt).Hours() / 24)
	daysUsed := int(now.Sub(sub.StartsAt).Hours() / 24)
	amount := CalculateRefund(sub.Price, daysUsed, totalDays, rule.RefundPolicy, rule.RefundPercent)
	if amount == 0 {
		return 0, nil
	}

	return amount, tx.Model(&sub).Updates(map[string]interface{}{
		"status":       "refunded",
		"refunded_at":  now,
		"refund_total": amount,
	}).Error
}

// CalculateRefund is pure: same inputs, same output.
//
//	full    -> price
//	partial -> price scaled by unused days, rounded
//	credit  -> price * percent/100 (default 50), rounded
//	none    -> 0
func CalculateRefund(price int64, daysUsed, totalDays int, policy models.RefundPolicy, percent int) int64 {
	if price <= 0 {
		return 0
	}
	switch policy {
	case models.RefundFull:
		return price
	case models.RefundPartial:
		if totalDays <= 0 {
			return 0
		}
		if daysUsed < 0 {
			daysUsed = 0
		}
		if daysUsed > totalDays {
			daysUsed = totalDays
		}
		unused := totalDays - daysUsed
		return int64(math.Round(float64(price) * float64(unused) / float64(totalDays)))
	case models.RefundCredit:
		if percent <= 0 {
			percent = 50
		}
		return int64(math.Round(float64(price) * float64(percent) / 100))
	default:
		return 0
	}
}

// GetRecord looks up one moderation record.
func (s *ModerationService) GetRecord(id uuid.UUID) (*models.ModerationRecord, error) {
	var record models.ModerationRecord
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListRecords returns the audit trail, newest first.
func (s *ModerationService) ListRecords(limit, offset int) ([]models.ModerationRecord, int64, error) {
	var records []models.ModerationRecord
	var total int64

	s.db.Model(&models.ModerationRecord{}).Count(&total)
	err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func appendWarning(existing datatypes.JSON, warning models.ListingWarning) (datatypes.JSON, error) {
	var warnings []models.ListingWarning
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &warnings); err != nil {
			return nil, err
		}
	}
	warnings = append(warnings, warning)
	raw, err := json.Marshal(warnings)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (s *ModerationService) publish(event events.Event) {
	if err := s.publisher.Publish(event); err != nil {
		slog.Error("failed to publish moderation event", "type", event.Type, "error", err)
	}
}
