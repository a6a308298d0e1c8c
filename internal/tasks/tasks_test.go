package tasks

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/models"
	"github.com/zaruud/zaruud-backend/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Listing{}, &models.SystemStatus{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{ListingTTLDays: 30, StatusCacheTTL: time.Minute}
	mode := services.NewSystemModeService(db, cfg, nil, nil)
	return NewRunner(db, cfg, mode)
}

func seedListing(t *testing.T, db *gorm.DB, status models.ListingStatus, age time.Duration) uuid.UUID {
	t.Helper()

	listing := &models.Listing{
		OwnerID: uuid.New(),
		Title:   "test",
		Status:  status,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}
	// Backdate past gorm's autoCreateTime.
	if err := db.Model(listing).UpdateColumn("created_at", time.Now().Add(-age)).Error; err != nil {
		t.Fatalf("failed to backdate listing: %v", err)
	}
	return listing.ID
}

func TestExpireListings(t *testing.T) {
	r := newTestRunner(t)

	stale := seedListing(t, r.db, models.ListingActive, 40*24*time.Hour)
	fresh := seedListing(t, r.db, models.ListingActive, time.Hour)
	suspended := seedListing(t, r.db, models.ListingSuspended, 40*24*time.Hour)

	r.expireListings()

	var got models.Listing
	r.db.First(&got, "id = ?", stale)
	if got.Status != models.ListingExpired {
		t.Errorf("stale active listing should expire, got %q", got.Status)
	}

	got = models.Listing{}
	r.db.First(&got, "id = ?", fresh)
	if got.Status != models.ListingActive {
		t.Errorf("fresh listing must stay active, got %q", got.Status)
	}

	got = models.Listing{}
	r.db.First(&got, "id = ?", suspended)
	if got.Status != models.ListingSuspended {
		t.Errorf("suspended listing must be left alone, got %q", got.Status)
	}
}
