package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VipSubscription is a paid visibility boost bound to a listing owner.
// Purchase and billing happen in the external payment flow; this model exists
// so moderation refunds have something to compute against.
type VipSubscription struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Plan        string     `gorm:"size:50;not null" json:"plan"`
	Price       int64      `gorm:"not null" json:"price"`
	StartsAt    time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt      time.Time  `gorm:"not null" json:"ends_at"`
	Status      string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
	RefundTotal int64      `gorm:"not null;default:0" json:"refund_total"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *VipSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (VipSubscription) TableName() string {
	return "vip_subscriptions"
}
