package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ModerationMetrics covers the report/moderation/appeal pipeline and the
// discovery feed builder.
type ModerationMetrics struct {
	ReportsSubmittedTotal  *prometheus.CounterVec
	ReportsDuplicateTotal  prometheus.Counter
	ListingsHiddenTotal    prometheus.Counter
	ListingsDeletedTotal   *prometheus.CounterVec
	AdminDecisionsTotal    *prometheus.CounterVec
	ModerationActionsTotal *prometheus.CounterVec
	RefundAmountTotal      prometheus.Counter
	AppealsSubmittedTotal  prometheus.Counter
	AppealsResolvedTotal   *prometheus.CounterVec
	FeedBuildDuration      prometheus.Histogram
	SystemModeGauge        *prometheus.GaugeVec
}

func NewModerationMetrics() *ModerationMetrics {
	return &ModerationMetrics{
		ReportsSubmittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_submitted_total",
				Help: "Community reports accepted, by reason",
			},
			[]string{"reason"},
		),
		ReportsDuplicateTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reports_duplicate_total",
				Help: "Report submissions rejected as duplicates",
			},
		),
		ListingsHiddenTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "listings_hidden_total",
				Help: "Listings auto-hidden by the report threshold",
			},
		),
		ListingsDeletedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listings_deleted_total",
				Help: "Listings deleted, by source (threshold, admin, moderation)",
			},
			[]string{"source"},
		),
		AdminDecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_admin_decisions_total",
				Help: "Admin decisions on hidden listings, by decision",
			},
			[]string{"decision"},
		),
		ModerationActionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_actions_total",
				Help: "Moderation actions executed, by violation type and action",
			},
			[]string{"violation_type", "action"},
		),
		RefundAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "moderation_refund_amount_total",
				Help: "Total refund amount applied to VIP subscriptions",
			},
		),
		AppealsSubmittedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "appeals_submitted_total",
				Help: "Appeals accepted for review",
			},
		),
		AppealsResolvedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appeals_resolved_total",
				Help: "Appeals resolved, by outcome",
			},
			[]string{"outcome"},
		),
		FeedBuildDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "discovery_feed_build_duration_seconds",
				Help:    "Time to build one discovery feed",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
			},
		),
		SystemModeGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_mode",
				Help: "Active system mode (1 for the current mode, 0 otherwise)",
			},
			[]string{"mode"},
		),
	}
}

func (m *ModerationMetrics) RecordReport(reason string) {
	m.ReportsSubmittedTotal.WithLabelValues(reason).Inc()
}

func (m *ModerationMetrics) RecordModeration(violationType, action string) {
	m.ModerationActionsTotal.WithLabelValues(violationType, action).Inc()
}

func (m *ModerationMetrics) RecordAppealResolved(approved bool) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	m.AppealsResolvedTotal.WithLabelValues(outcome).Inc()
}

func (m *ModerationMetrics) RecordSystemMode(mode string) {
	for _, known := range []string{"normal", "read_only", "maintenance", "lockdown"} {
		v := 0.0
		if known == mode {
			v = 1.0
		}
		m.SystemModeGauge.WithLabelValues(known).Set(v)
	}
}
