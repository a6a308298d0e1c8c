package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Appeal is a user's contest of a moderation record. The unique index on
// ModerationRecordID enforces at most one appeal per record.
type Appeal struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModerationRecordID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"moderation_record_id"`
	SubmitterID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"submitter_id"`
	Reason             string         `gorm:"size:1000;not null" json:"reason"`
	Evidence           datatypes.JSON `gorm:"type:jsonb" json:"evidence,omitempty"`
	Status             AppealStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewerNote       string         `gorm:"size:1000" json:"reviewer_note,omitempty"`
	ResolvedAt         *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (a *Appeal) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Appeal) TableName() string {
	return "appeals"
}
