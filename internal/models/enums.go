package models

// ViolationType is the categorical reason a listing is judged non-compliant.
type ViolationType string

const (
	ViolationForeignProduct ViolationType = "foreign_product"
	ViolationCounterfeit    ViolationType = "counterfeit"
	ViolationIllegalContent ViolationType = "illegal_content"
	ViolationSpam           ViolationType = "spam"
	ViolationScam           ViolationType = "scam"
	ViolationWrongCategory  ViolationType = "wrong_category"
	ViolationLowQuality     ViolationType = "low_quality"
	ViolationDuplicate      ViolationType = "duplicate"
	ViolationOther          ViolationType = "other"
)

// AllViolationTypes lists every violation type the rule table must cover.
var AllViolationTypes = []ViolationType{
	ViolationForeignProduct,
	ViolationCounterfeit,
	ViolationIllegalContent,
	ViolationSpam,
	ViolationScam,
	ViolationWrongCategory,
	ViolationLowQuality,
	ViolationDuplicate,
	ViolationOther,
}

func (v ViolationType) Valid() bool {
	for _, t := range AllViolationTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// ModerationAction is what the engine does to a listing for a violation.
type ModerationAction string

const (
	ActionDelete      ModerationAction = "delete"
	ActionSuspend     ModerationAction = "suspend"
	ActionWarn        ModerationAction = "warn"
	ActionRequestEdit ModerationAction = "request_edit"
	ActionApprove     ModerationAction = "approve"
)

type RefundPolicy string

const (
	RefundNone    RefundPolicy = "none"
	RefundFull    RefundPolicy = "full"
	RefundPartial RefundPolicy = "partial"
	RefundCredit  RefundPolicy = "credit"
)

type AppealStatus string

const (
	AppealNone      AppealStatus = "none"
	AppealPending   AppealStatus = "pending"
	AppealReviewing AppealStatus = "reviewing"
	AppealApproved  AppealStatus = "approved"
	AppealRejected  AppealStatus = "rejected"
)

// Terminal reports whether the appeal can no longer change state.
func (s AppealStatus) Terminal() bool {
	return s == AppealApproved || s == AppealRejected
}

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSuspended ListingStatus = "suspended"
	ListingDeleted   ListingStatus = "deleted"
	ListingExpired   ListingStatus = "expired"
	ListingSold      ListingStatus = "sold"
	ListingArchived  ListingStatus = "archived"
)

// ListingTier is the visibility scope of a listing.
type ListingTier string

const (
	TierSoum     ListingTier = "soum"
	TierAimag    ListingTier = "aimag"
	TierNational ListingTier = "national"
)

// ReportStatus tracks the community-report pipeline for one listing.
type ReportStatus string

const (
	ReportActive  ReportStatus = "active"
	ReportHidden  ReportStatus = "hidden"
	ReportDeleted ReportStatus = "deleted"
)

type AdminDecision string

const (
	DecisionShow   AdminDecision = "show"
	DecisionDelete AdminDecision = "delete"
)

type SystemMode string

const (
	ModeNormal      SystemMode = "normal"
	ModeReadOnly    SystemMode = "read_only"
	ModeMaintenance SystemMode = "maintenance"
	ModeLockdown    SystemMode = "lockdown"
)

func (m SystemMode) Valid() bool {
	switch m {
	case ModeNormal, ModeReadOnly, ModeMaintenance, ModeLockdown:
		return true
	}
	return false
}

// UserAction is a gateable user-facing operation (system mode gate).
type UserAction string

const (
	ActionView          UserAction = "view"
	ActionLogin         UserAction = "login"
	ActionCreateListing UserAction = "create_listing"
	ActionEditListing   UserAction = "edit_listing"
	ActionReport        UserAction = "report"
	ActionAppeal        UserAction = "appeal"
	ActionChat          UserAction = "chat"
	ActionPurchase      UserAction = "purchase"
)
