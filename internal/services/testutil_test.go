package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/config"
	"github.com/zaruud/zaruud-backend/internal/events"
	"github.com/zaruud/zaruud-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.ReportRecord{},
		&models.ListingReport{},
		&models.ModerationRecord{},
		&models.Appeal{},
		&models.VipSubscription{},
		&models.SystemStatus{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		HideThreshold:    3,
		DeleteThreshold:  5,
		AppealWindowDays: 7,

		FeedTotalItems:    10,
		FeedNewSlots:      3,
		FeedRandomSlots:   2,
		FeedBoostNewHours: 24,
		FeedHalfLifeHours: 168,

		StatusCacheTTL: time.Minute,
		ListingTTLDays: 30,
	}
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	published []events.Event
}

func (p *capturePublisher) Publish(e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

func (p *capturePublisher) has(eventType string) bool {
	for _, e := range p.published {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

func createTestListing(t *testing.T, db *gorm.DB, mutate ...func(*models.Listing)) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		OwnerID: uuid.New(),
		Title:   "Winter deel, size L",
		Price:   150000,
		Tier:    models.TierSoum,
		Status:  models.ListingActive,
	}
	for _, fn := range mutate {
		fn(listing)
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}
