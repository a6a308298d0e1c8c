package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationRecord is the immutable audit entry for one enforcement action.
// Only the appeal mirror fields change after creation; rows are never deleted.
type ModerationRecord struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"listing_id"`
	ListingTitle  string           `gorm:"size:255;not null" json:"listing_title"`
	OwnerID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"owner_id"`
	ViolationType ViolationType    `gorm:"size:50;not null;index" json:"violation_type"`
	ActionTaken   ModerationAction `gorm:"size:20;not null" json:"action_taken"`
	RefundPolicy  RefundPolicy     `gorm:"size:20;not null" json:"refund_policy"`
	RefundAmount  int64            `gorm:"not null;default:0" json:"refund_amount"`
	ModeratorNote string           `gorm:"size:1000" json:"moderator_note"`

	AppealDeadline   time.Time    `gorm:"not null" json:"appeal_deadline"`
	AppealStatus     AppealStatus `gorm:"size:20;not null;default:'none';index" json:"appeal_status"`
	AppealNote       string       `gorm:"size:1000" json:"appeal_note,omitempty"`
	AppealResolvedAt *time.Time   `json:"appeal_resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *ModerationRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (ModerationRecord) TableName() string {
	return "moderation_records"
}
