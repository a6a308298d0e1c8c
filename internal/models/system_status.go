package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemStatus is the operating-mode singleton. Exactly one row has
// IsActive=true; SetMode deactivates the previous row before inserting the
// next, so history is preserved.
type SystemStatus struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Mode         SystemMode `gorm:"size:20;not null;default:'normal'" json:"mode"`
	Message      string     `gorm:"size:500" json:"message"`
	IsActive     bool       `gorm:"not null;default:true;index" json:"is_active"`
	EnabledAt    time.Time  `gorm:"not null" json:"enabled_at"`
	ScheduledEnd *time.Time `json:"scheduled_end,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (s *SystemStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (SystemStatus) TableName() string {
	return "system_statuses"
}
