package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportRecord aggregates community reports for one listing. One row per
// listing; TotalReports is incremented atomically together with the
// ListingReport insert.
type ReportRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"listing_id"`
	TotalReports  int            `gorm:"not null;default:0" json:"total_reports"`
	Status        ReportStatus   `gorm:"size:20;not null;default:'active';index" json:"status"`
	HiddenAt      *time.Time     `json:"hidden_at,omitempty"`
	AdminDecision *AdminDecision `gorm:"size:20" json:"admin_decision,omitempty"`
	DecidedAt     *time.Time     `json:"decided_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (r *ReportRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ReportRecord) TableName() string {
	return "report_records"
}

// ListingReport is a single user's report of a listing. The composite unique
// index enforces at most one report per user per listing.
type ListingReport struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_listing_reporter,priority:1" json:"listing_id"`
	ReporterID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_listing_reporter,priority:2" json:"reporter_id"`
	Reason      ViolationType `gorm:"size:50;not null" json:"reason"`
	Description string        `gorm:"size:1000" json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (r *ListingReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ListingReport) TableName() string {
	return "listing_reports"
}
