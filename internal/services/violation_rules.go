package services

import (
	"github.com/zaruud/zaruud-backend/internal/models"
)

// ViolationRule maps a violation type to its enforcement policy. The table is
// static: both the moderation engine (what to do) and the appeal workflow
// (whether an appeal is permitted) read it, nothing writes it.
type ViolationRule struct {
	Type          models.ViolationType
	Severity      models.Severity
	Action        models.ModerationAction
	RefundPolicy  models.RefundPolicy
	RefundPercent int // only meaningful for RefundCredit
	AppealAllowed bool
}

var violationRules = map[models.ViolationType]ViolationRule{
	models.ViolationForeignProduct: {
		Type:          models.ViolationForeignProduct,
		Severity:      models.SeverityCritical,
		Action:        models.ActionDelete,
		RefundPolicy:  models.RefundFull,
		AppealAllowed: true,
	},
	models.ViolationCounterfeit: {
		Type:          models.ViolationCounterfeit,
		Severity:      models.SeverityCritical,
		Action:        models.ActionDelete,
		RefundPolicy:  models.RefundNone,
		AppealAllowed: false,
	},
	models.ViolationIllegalContent: {
		Type:          models.ViolationIllegalContent,
		Severity:      models.SeverityCritical,
		Action:        models.ActionDelete,
		RefundPolicy:  models.RefundNone,
		AppealAllowed: false,
	},
	models.ViolationScam: {
		Type:          models.ViolationScam,
		Severity:      models.SeverityCritical,
		Action:        models.ActionSuspend,
		RefundPolicy:  models.RefundNone,
		AppealAllowed: true,
	},
	models.ViolationSpam: {
		Type:          models.ViolationSpam,
		Severity:      models.SeverityMajor,
		Action:        models.ActionDelete,
		RefundPolicy:  models.RefundPartial,
		AppealAllowed: true,
	},
	models.ViolationDuplicate: {
		Type:          models.ViolationDuplicate,
		Severity:      models.SeverityMajor,
		Action:        models.ActionDelete,
		RefundPolicy:  models.RefundCredit,
		RefundPercent: 50,
		AppealAllowed: true,
	},
	models.ViolationWrongCategory: {
		Type:          models.ViolationWrongCategory,
		Severity:      models.SeverityMinor,
		Action:        models.ActionRequestEdit,
		RefundPolicy:  models.RefundNone,
		AppealAllowed: true,
	},
	models.ViolationLowQuality: {
		Type:          models.ViolationLowQuality,
		Severity:      models.SeverityMinor,
		Action:        models.ActionWarn,
		RefundPolicy:  models.RefundNone,
		AppealAllowed: true,
	},
	models.ViolationOther: {
		Type:          models.ViolationOther,
		Severity:      models.SeverityMinor,
		Action:        models.ActionWarn,
		RefundPolicy:  models.RefundNone,
		AppealAllowed: true,
	},
}

// RuleFor is total: unknown types fall back to the "other" catch-all.
func RuleFor(t models.ViolationType) ViolationRule {
	if rule, ok := violationRules[t]; ok {
		return rule
	}
	return violationRules[models.ViolationOther]
}
