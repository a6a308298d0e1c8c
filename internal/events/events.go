package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/models"
)

// Event types published after moderation-pipeline mutations. Delivery is
// at-least-once; consumers re-read the authoritative row rather than trusting
// the payload as current state.
const (
	TypeListingReported  = "listing.reported"
	TypeListingHidden    = "listing.hidden"
	TypeListingDeleted   = "listing.deleted"
	TypeListingRestored  = "listing.restored"
	TypeListingModerated = "listing.moderated"
	TypeAppealSubmitted  = "appeal.submitted"
	TypeAppealResolved   = "appeal.resolved"
	TypeSystemModeSet    = "system.mode_set"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	ListingID          uuid.UUID               `json:"listing_id,omitempty"`
	OwnerID            uuid.UUID               `json:"owner_id,omitempty"`
	ModerationRecordID uuid.UUID               `json:"moderation_record_id,omitempty"`
	AppealID           uuid.UUID               `json:"appeal_id,omitempty"`
	ViolationType      models.ViolationType    `json:"violation_type,omitempty"`
	ActionTaken        models.ModerationAction `json:"action_taken,omitempty"`
	AppealStatus       models.AppealStatus     `json:"appeal_status,omitempty"`
	TotalReports       int                     `json:"total_reports,omitempty"`
	SystemMode         models.SystemMode       `json:"system_mode,omitempty"`
}

// Publisher fans moderation events out to interested consumers (admin
// dashboard refresh, notification workers).
type Publisher interface {
	Publish(event Event) error
}

// NoopPublisher discards events; used when no brokers are configured and in
// tests that don't assert on events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) error { return nil }
