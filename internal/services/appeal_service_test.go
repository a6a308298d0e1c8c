package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/events"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/gorm"
)

func newAppealFixture(t *testing.T) (*AppealService, *ModerationService, *capturePublisher, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	pub := &capturePublisher{}
	return NewAppealService(db, nil, pub),
		NewModerationService(db, newTestConfig(), nil, pub),
		pub, db
}

func TestSubmitAppeal(t *testing.T) {
	appeals, moderation, pub, db := newAppealFixture(t)
	listing := createTestListing(t, db)

	record, err := moderation.ModerateListing(listing.ID, models.ViolationSpam, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}

	appeal, err := appeals.SubmitAppeal(record.ID, listing.OwnerID, "this is my own handmade work", []string{"receipt.jpg"})
	if err != nil {
		t.Fatalf("SubmitAppeal failed: %v", err)
	}
	if appeal.Status != models.AppealPending {
		t.Errorf("expected pending, got %q", appeal.Status)
	}
	if len(appeal.Evidence) == 0 {
		t.Error("evidence should be stored")
	}

	var reloaded models.ModerationRecord
	db.First(&reloaded, "id = ?", record.ID)
	if reloaded.AppealStatus != models.AppealPending {
		t.Errorf("record should mirror pending, got %q", reloaded.AppealStatus)
	}
	if !pub.has(events.TypeAppealSubmitted) {
		t.Error("expected an appeal.submitted event")
	}
}

func TestSubmitAppealNotAllowedForType(t *testing.T) {
	appeals, moderation, _, db := newAppealFixture(t)
	listing := createTestListing(t, db)

	record, err := moderation.ModerateListing(listing.ID, models.ViolationCounterfeit, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}

	_, err = appeals.SubmitAppeal(record.ID, listing.OwnerID, "please", nil)
	if !errors.Is(err, ErrAppealNotAllowed) {
		t.Errorf("expected ErrAppealNotAllowed, got %v", err)
	}
}

func TestSubmitAppealDeadlinePassed(t *testing.T) {
	appeals, _, _, db := newAppealFixture(t)
	listing := createTestListing(t, db)

	record := &models.ModerationRecord{
		ListingID:      listing.ID,
		ListingTitle:   listing.Title,
		OwnerID:        listing.OwnerID,
		ViolationType:  models.ViolationSpam,
		ActionTaken:    models.ActionDelete,
		RefundPolicy:   models.RefundPartial,
		AppealDeadline: time.Now().Add(-time.Hour),
		AppealStatus:   models.AppealNone,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	_, err := appeals.SubmitAppeal(record.ID, listing.OwnerID, "too late", nil)
	if !errors.Is(err, ErrAppealDeadlinePassed) {
		t.Errorf("expected ErrAppealDeadlinePassed, got %v", err)
	}
}

func TestSubmitAppealOnlyOnce(t *testing.T) {
	appeals, moderation, _, db := newAppealFixture(t)
	listing := createTestListing(t, db)

	record, err := moderation.ModerateListing(listing.ID, models.ViolationSpam, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}

	if _, err := appeals.SubmitAppeal(record.ID, listing.OwnerID, "first", nil); err != nil {
		t.Fatalf("first appeal failed: %v", err)
	}

	_, err = appeals.SubmitAppeal(record.ID, listing.OwnerID, "second", nil)
	if !errors.Is(err, ErrAppealExists) {
		t.Errorf("expected ErrAppealExists, got %v", err)
	}
}

func TestSubmitAppealRecordNotFound(t *testing.T) {
	appeals, _, _, _ := newAppealFixture(t)

	_, err := appeals.SubmitAppeal(uuid.New(), uuid.New(), "ghost", nil)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestResolveAppealApprovedRestoresListing(t *testing.T) {
	appeals, moderation, pub, db := newAppealFixture(t)
	listing := createTestListing(t, db)

	record, err := moderation.ModerateListing(listing.ID, models.ViolationSpam, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}
	appeal, err := appeals.SubmitAppeal(record.ID, listing.OwnerID, "not spam, reposted after a sale fell through", nil)
	if err != nil {
		t.Fatalf("SubmitAppeal failed: %v", err)
	}

	if err := appeals.ResolveAppeal(appeal.ID, true, "evidence checks out"); err != nil {
		t.Fatalf("ResolveAppeal failed: %v", err)
	}

	var reloaded models.Listing
	db.First(&reloaded, "id = ?", listing.ID)
	if reloaded.Status != models.ListingActive {
		t.Errorf("expected listing restored to active, got %q", reloaded.Status)
	}
	if reloaded.ModDeletedAt != nil || reloaded.DeletionReason != nil {
		t.Error("deletion marks should be cleared")
	}
	if reloaded.RestoredAt == nil {
		t.Error("restored_at should be stamped")
	}

	var rec models.ModerationRecord
	db.First(&rec, "id = ?", record.ID)
	if rec.AppealStatus != models.AppealApproved {
		t.Errorf("record should mirror approved, got %q", rec.AppealStatus)
	}
	if rec.AppealResolvedAt == nil {
		t.Error("appeal_resolved_at should be set")
	}
	if !pub.has(events.TypeAppealResolved) || !pub.has(events.TypeListingRestored) {
		t.Error("expected appeal.resolved and listing.restored events")
	}
}

func TestResolveAppealRejectedLeavesListing(t *testing.T) {
	appeals, moderation, _, db := newAppealFixture(t)
	listing := createTestListing(t, db)

	record, err := moderation.ModerateListing(listing.ID, models.ViolationSpam, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}
	appeal, err := appeals.SubmitAppeal(record.ID, listing.OwnerID, "not spam", nil)
	if err != nil {
		t.Fatalf("SubmitAppeal failed: %v", err)
	}

	if err := appeals.ResolveAppeal(appeal.ID, false, "clearly reposted daily"); err != nil {
		t.Fatalf("ResolveAppeal failed: %v", err)
	}

	var reloaded models.Listing
	db.First(&reloaded, "id = ?", listing.ID)
	if reloaded.Status != models.ListingDeleted {
		t.Errorf("rejection must leave the listing deleted, got %q", reloaded.Status)
	}

	var got models.Appeal
	db.First(&got, "id = ?", appeal.ID)
	if got.Status != models.AppealRejected || got.ReviewerNote == "" || got.ResolvedAt == nil {
		t.Errorf("appeal not finalized: %+v", got)
	}
}

func TestResolveAppealIsTerminal(t *testing.T) {
	appeals, moderation, _, db := newAppealFixture(t)
	listing := createTestListing(t, db)

	record, err := moderation.ModerateListing(listing.ID, models.ViolationSpam, "")
	if err != nil {
		t.Fatalf("ModerateListing failed: %v", err)
	}
	appeal, err := appeals.SubmitAppeal(record.ID, listing.OwnerID, "not spam", nil)
	if err != nil {
		t.Fatalf("SubmitAppeal failed: %v", err)
	}

	if err := appeals.ResolveAppeal(appeal.ID, false, ""); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	err = appeals.ResolveAppeal(appeal.ID, true, "changed my mind")
	if !errors.Is(err, ErrAppealResolved) {
		t.Errorf("expected ErrAppealResolved, got %v", err)
	}

	var reloaded models.Listing
	db.First(&reloaded, "id = ?", listing.ID)
	if reloaded.Status != models.ListingDeleted {
		t.Error("a rejected appeal must stay rejected")
	}
}

func TestListPending(t *testing.T) {
	appeals, moderation, _, db := newAppealFixture(t)

	for i := 0; i < 3; i++ {
		listing := createTestListing(t, db)
		record, err := moderation.ModerateListing(listing.ID, models.ViolationSpam, "")
		if err != nil {
			t.Fatalf("ModerateListing failed: %v", err)
		}
		if _, err := appeals.SubmitAppeal(record.ID, listing.OwnerID, "appeal", nil); err != nil {
			t.Fatalf("SubmitAppeal failed: %v", err)
		}
	}

	pending, total, err := appeals.ListPending(10, 0)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if total != 3 || len(pending) != 3 {
		t.Errorf("expected 3 pending appeals, got total=%d len=%d", total, len(pending))
	}

	if err := appeals.ResolveAppeal(pending[0].ID, true, ""); err != nil {
		t.Fatalf("ResolveAppeal failed: %v", err)
	}

	_, total, err = appeals.ListPending(10, 0)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 pending after resolve, got %d", total)
	}
}
