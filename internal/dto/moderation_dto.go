package dto

import (
	"time"

	"github.com/zaruud/zaruud-backend/internal/models"
)

// CreateReportRequest is a community report against a listing.
type CreateReportRequest struct {
	Reason      models.ViolationType `json:"reason"`
	Description string               `json:"description,omitempty"`
}

// ReportResult is the structured outcome of a report submission. A duplicate
// report is a defined outcome (Success=false), not an error.
type ReportResult struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	TotalReports int                 `json:"total_reports"`
	Status       models.ReportStatus `json:"status"`
}

type AdminReviewRequest struct {
	Decision models.AdminDecision `json:"decision"`
}

type ModerateListingRequest struct {
	ViolationType models.ViolationType `json:"violation_type"`
	ModeratorNote string               `json:"moderator_note"`
}

type RefundPreviewRequest struct {
	SubscriptionPrice int64               `json:"subscription_price"`
	DaysUsed          int                 `json:"days_used"`
	TotalDays         int                 `json:"total_days"`
	RefundPolicy      models.RefundPolicy `json:"refund_policy"`
	RefundPercent     *int                `json:"refund_percent,omitempty"`
}

type RefundPreviewResponse struct {
	Amount int64 `json:"amount"`
}

type SubmitAppealRequest struct {
	Reason   string   `json:"reason"`
	Evidence []string `json:"evidence,omitempty"`
}

type ResolveAppealRequest struct {
	Approved     bool   `json:"approved"`
	ReviewerNote string `json:"reviewer_note"`
}

type SetSystemModeRequest struct {
	Mode         models.SystemMode `json:"mode"`
	Message      string            `json:"message"`
	ScheduledEnd *time.Time        `json:"scheduled_end,omitempty"`
}

type ActionCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
