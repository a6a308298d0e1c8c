package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/events"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/gorm"
)

func newModerationService(t *testing.T) (*ModerationService, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	return NewModerationService(newTestDB(t), newTestConfig(), nil, pub), pub
}

func TestModerateListingDelete(t *testing.T) {
	svc, pub := newModerationService(t)
	listing := createTestListing(t, svc.db)

	record, err := svc.ModerateListing(listing.ID, models.ViolationCounterfeit, "fake brand goods")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}
	if record.ActionTaken != models.ActionDelete {
		t.Errorf("expected delete action, got %q", record.ActionTaken)
	}
	if record.ListingTitle != listing.Title {
		t.Error("record should snapshot the listing title")
	}

	var reloaded models.Listing
	svc.db.First(&reloaded, "id = ?", listing.ID)
	if reloaded.Status != models.ListingDeleted {
		t.Errorf("expected listing deleted, got %q", reloaded.Status)
	}
	if reloaded.ModDeletedAt == nil {
		t.Error("mod_deleted_at should be set")
	}
	if reloaded.DeletionReason == nil || *reloaded.DeletionReason != models.ViolationCounterfeit {
		t.Error("deletion_reason should record the violation type")
	}
	if reloaded.ModerationRecordID == nil || *reloaded.ModerationRecordID != record.ID {
		t.Error("listing should point at its moderation record")
	}
	if !pub.has(events.TypeListingModerated) {
		t.Error("expected a listing.moderated event")
	}
}

func TestModerateListingSuspend(t *testing.T) {
	svc, _ := newModerationService(t)
	listing := createTestListing(t, svc.db)

	record, err := svc.ModerateListing(listing.ID, models.ViolationScam, "fake payment link")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}
	if record.ActionTaken != models.ActionSuspend {
		t.Errorf("expected suspend action, got %q", record.ActionTaken)
	}

	var reloaded models.Listing
	svc.db.First(&reloaded, "id = ?", listing.ID)
	if reloaded.Status != models.ListingSuspended {
		t.Errorf("expected listing suspended, got %q", reloaded.Status)
	}
	if reloaded.SuspendedAt == nil {
		t.Error("suspended_at should be set")
	}
}

func TestModerateListingWarn(t *testing.T) {
	svc, _ := newModerationService(t)
	listing := createTestListing(t, svc.db)

	if _, err := svc.ModerateListing(listing.ID, models.ViolationLowQuality, "blurry photos"); err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}

	var reloaded models.Listing
	svc.db.First(&reloaded, "id = ?", listing.ID)
	if reloaded.Status != models.ListingActive {
		t.Errorf("warning must not change listing status, got %q", reloaded.Status)
	}

	var warnings []models.ListingWarning
	if err := json.Unmarshal(reloaded.Warnings, &warnings); err != nil {
		t.Fatalf("failed to decode warnings: %v", err)
	}
	if len(warnings) != 1 || warnings[0].ViolationType != models.ViolationLowQuality {
		t.Errorf("expected one low_quality warning, got %+v", warnings)
	}

	// A second warning appends, never overwrites.
	if _, err := svc.ModerateListing(listing.ID, models.ViolationOther, "misc"); err != nil {
		t.Fatalf("second ModerateListing failed: %v", err)
	}
	svc.db.First(&reloaded, "id = ?", listing.ID)
	if err := json.Unmarshal(reloaded.Warnings, &warnings); err != nil {
		t.Fatalf("failed to decode warnings: %v", err)
	}
	if len(warnings) != 2 {
		t.Errorf("expected two warnings, got %d", len(warnings))
	}
}

func TestModerateListingRequestEdit(t *testing.T) {
	svc, _ := newModerationService(t)
	listing := createTestListing(t, svc.db)

	if _, err := svc.ModerateListing(listing.ID, models.ViolationWrongCategory, "move to vehicles"); err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}

	var reloaded models.Listing
	svc.db.First(&reloaded, "id = ?", listing.ID)
	if !reloaded.NeedsEdit {
		t.Error("needs_edit should be set")
	}
	if reloaded.Status != models.ListingActive {
		t.Errorf("request_edit must keep the listing active, got %q", reloaded.Status)
	}
}

func TestModerateListingNotFound(t *testing.T) {
	svc, _ := newModerationService(t)

	_, err := svc.ModerateListing(uuid.New(), models.ViolationSpam, "")
	if !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}

	// No orphan record may be written.
	var count int64
	svc.db.Model(&models.ModerationRecord{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no moderation records, got %d", count)
	}
}

func TestModerateListingAppealDeadline(t *testing.T) {
	svc, _ := newModerationService(t)
	listing := createTestListing(t, svc.db)

	record, err := svc.ModerateListing(listing.ID, models.ViolationSpam, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}

	want := time.Now().Add(time.Duration(svc.cfg.AppealWindowDays) * 24 * time.Hour)
	if diff := record.AppealDeadline.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("appeal deadline off by %v", diff)
	}
}

func createActiveSubscription(t *testing.T, db *gorm.DB, userID uuid.UUID, price int64, daysUsed, totalDays int) *models.VipSubscription {
	t.Helper()
	now := time.Now()
	sub := &models.VipSubscription{
		UserID:   userID,
		Plan:     "vip-30",
		Price:    price,
		StartsAt: now.AddDate(0, 0, -daysUsed),
		EndsAt:   now.AddDate(0, 0, totalDays-daysUsed),
		Status:   "active",
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	return sub
}

func TestModerateListingFullRefund(t *testing.T) {
	svc, _ := newModerationService(t)
	listing := createTestListing(t, svc.db)
	createActiveSubscription(t, svc.db, listing.OwnerID, 50000, 10, 30)

	record, err := svc.ModerateListing(listing.ID, models.ViolationForeignProduct, "imported resale")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}
	if record.RefundAmount != 50000 {
		t.Errorf("expected full refund 50000, got %d", record.RefundAmount)
	}

	var sub models.VipSubscription
	svc.db.Where("user_id = ?", listing.OwnerID).First(&sub)
	if sub.Status != "refunded" || sub.RefundedAt == nil || sub.RefundTotal != 50000 {
		t.Errorf("subscription not booked as refunded: %+v", sub)
	}
}

func TestModerateListingRefundAppliedOnce(t *testing.T) {
	svc, _ := newModerationService(t)
	owner := uuid.New()
	first := createTestListing(t, svc.db, func(l *models.Listing) { l.OwnerID = owner })
	second := createTestListing(t, svc.db, func(l *models.Listing) { l.OwnerID = owner })
	createActiveSubscription(t, svc.db, owner, 50000, 0, 30)

	recordA, err := svc.ModerateListing(first.ID, models.ViolationForeignProduct, "")
	if err != nil {
		t.Fatalf("first moderation failed: %v", err)
	}
	recordB, err := svc.ModerateListing(second.ID, models.ViolationForeignProduct, "")
	if err != nil {
		t.Fatalf("second moderation failed: %v", err)
	}

	if recordA.RefundAmount != 50000 {
		t.Errorf("first moderation should refund, got %d", recordA.RefundAmount)
	}
	if recordB.RefundAmount != 0 {
		t.Errorf("refunded subscription must not pay twice, got %d", recordB.RefundAmount)
	}
}

func TestModerateListingNoSubscriptionNoRefund(t *testing.T) {
	svc, _ := newModerationService(t)
	listing := createTestListing(t, svc.db)

	record, err := svc.ModerateListing(listing.ID, models.ViolationForeignProduct, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}
	if record.RefundAmount != 0 {
		t.Errorf("no subscription means no refund, got %d", record.RefundAmount)
	}
}

func TestCalculateRefund(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		daysUsed int
		total    int
		policy   models.RefundPolicy
		percent  int
		want     int64
	}{
		{"full", 30000, 15, 30, models.RefundFull, 0, 30000},
		{"partial half used", 30000, 15, 30, models.RefundPartial, 0, 15000},
		{"partial unused", 30000, 0, 30, models.RefundPartial, 0, 30000},
		{"partial fully used", 30000, 30, 30, models.RefundPartial, 0, 0},
		{"partial overused clamps", 30000, 45, 30, models.RefundPartial, 0, 0},
		{"partial negative clamps", 30000, -5, 30, models.RefundPartial, 0, 30000},
		{"partial zero total", 30000, 0, 0, models.RefundPartial, 0, 0},
		{"partial rounds", 10000, 10, 30, models.RefundPartial, 0, 6667},
		{"credit default 50", 30000, 0, 30, models.RefundCredit, 0, 15000},
		{"credit explicit 25", 30000, 0, 30, models.RefundCredit, 25, 7500},
		{"none", 30000, 0, 30, models.RefundNone, 0, 0},
		{"zero price", 0, 0, 30, models.RefundFull, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateRefund(tc.price, tc.daysUsed, tc.total, tc.policy, tc.percent)
			if got != tc.want {
				t.Errorf("CalculateRefund(%d, %d, %d, %q, %d) = %d, want %d",
					tc.price, tc.daysUsed, tc.total, tc.policy, tc.percent, got, tc.want)
			}
		})
	}
}

func TestGetRecord(t *testing.T) {
	svc, _ := newModerationService(t)
	listing := createTestListing(t, svc.db)

	created, err := svc.ModerateListing(listing.ID, models.ViolationSpam, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}

	got, err := svc.GetRecord(created.ID)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got.ListingID != listing.ID {
		t.Error("wrong record returned")
	}

	if _, err := svc.GetRecord(uuid.New()); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
