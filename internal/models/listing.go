package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing is a marketplace listing. Engagement counters feed the discovery
// ranking; moderation fields are written only by the moderation services.
type Listing struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Price       int64         `gorm:"not null;default:0" json:"price"`
	Tier        ListingTier   `gorm:"size:20;not null;default:'soum'" json:"tier"`
	Status      ListingStatus `gorm:"size:20;not null;default:'active';index" json:"status"`

	// HiddenByReports is set by the report aggregator when the hide threshold
	// is crossed and cleared only by an admin "show" decision. A hidden listing
	// keeps status=active but is excluded from discovery.
	HiddenByReports bool `gorm:"not null;default:false;index" json:"hidden_by_reports"`

	// Engagement counters, incremented atomically.
	Views      int `gorm:"not null;default:0" json:"views"`
	Saves      int `gorm:"not null;default:0" json:"saves"`
	CallClicks int `gorm:"not null;default:0" json:"call_clicks"`
	ChatClicks int `gorm:"not null;default:0" json:"chat_clicks"`
	Shares     int `gorm:"not null;default:0" json:"shares"`

	// Moderation state.
	Warnings           datatypes.JSON `gorm:"type:jsonb" json:"warnings,omitempty"`
	NeedsEdit          bool           `gorm:"not null;default:false" json:"needs_edit"`
	ModerationRecordID *uuid.UUID     `gorm:"type:uuid" json:"moderation_record_id,omitempty"`
	DeletionReason     *ViolationType `gorm:"size:50" json:"deletion_reason,omitempty"`
	ModDeletedAt       *time.Time     `json:"mod_deleted_at,omitempty"`
	SuspendedAt        *time.Time     `json:"suspended_at,omitempty"`
	RestoredAt         *time.Time     `json:"restored_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (Listing) TableName() string {
	return "listings"
}

// ListingWarning is one entry of a listing's warnings JSON column.
type ListingWarning struct {
	ViolationType ViolationType `json:"violation_type"`
	Note          string        `json:"note"`
	IssuedAt      time.Time     `json:"issued_at"`
}
