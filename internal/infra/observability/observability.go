// Package observability exposes Prometheus metrics for the compliance
// dashboard and the enforcement workflow.
//
// Gauges mirror the latest evaluation pass; counters and histograms
// accumulate across the process lifetime. Everything registers on the
// default registry and is served at /metrics when enabled.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enforcement cycle outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// Enforcement pipeline stages.
const (
	StageDraft    = "draft"
	StageNotarize = "notarize"
	StageLedger   = "ledger"
)

// ─── Compliance Metrics ─────────────────────────────────────────────────────

// PermitsTracked is the size of the last evaluated watchlist.
var PermitsTracked = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "sheriff",
	Subsystem: "compliance",
	Name:      "permits_tracked",
	Help:      "Permits in the most recently evaluated watchlist snapshot.",
})

// ViolationsActive is the number of permits past their statute limit.
var ViolationsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "sheriff",
	Subsystem: "compliance",
	Name:      "violations_active",
	Help:      "Permits whose review clock exceeds the statute limit.",
})

// AtRiskActive is the number of permits inside the warning band.
var AtRiskActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "sheriff",
	Subsystem: "compliance",
	Name:      "at_risk_active",
	Help:      "Permits past 80% of the statute limit but not yet over it.",
})

// RefundsRecoverableCents is the total refund exposure across violations.
var RefundsRecoverableCents = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "sheriff",
	Subsystem: "compliance",
	Name:      "refunds_recoverable_cents",
	Help:      "Sum of refunds owed across all active violations, in cents.",
})

// ─── Enforcement Metrics ────────────────────────────────────────────────────

// EnforcementCycles counts finished cycles by outcome.
var EnforcementCycles = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sheriff",
	Subsystem: "enforcement",
	Name:      "cycles_total",
	Help:      "Enforcement cycles by outcome (completed, failed, rejected).",
}, []string{"outcome"})

// EnforcementStageSeconds times each pipeline stage.
var EnforcementStageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "sheriff",
	Subsystem: "enforcement",
	Name:      "stage_seconds",
	Help:      "Wall time per enforcement pipeline stage.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
}, []string{"stage"})

// ─── Notary and Ledger Metrics ──────────────────────────────────────────────

// NotarizationsTotal counts issued proofs.
var NotarizationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "sheriff",
	Subsystem: "notary",
	Name:      "notarizations_total",
	Help:      "Integrity proofs issued for drafted notices.",
})

// LedgerEntries is the current chain length.
var LedgerEntries = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "sheriff",
	Subsystem: "ledger",
	Name:      "entries",
	Help:      "Records in the enforcement ledger.",
})

// ─── Helpers ────────────────────────────────────────────────────────────────

// RecordCompliance updates the dashboard gauges after an evaluation pass.
func RecordCompliance(tracked, violations, atRisk int, recoverableCents int64) {
	PermitsTracked.Set(float64(tracked))
	ViolationsActive.Set(float64(violations))
	AtRiskActive.Set(float64(atRisk))
	RefundsRecoverableCents.Set(float64(recoverableCents))
}

// RecordCycleOutcome counts one finished enforcement cycle.
func RecordCycleOutcome(outcome string) {
	EnforcementCycles.WithLabelValues(outcome).Inc()
}

// ObserveStage records the wall time of one pipeline stage.
func ObserveStage(stage string, elapsed time.Duration) {
	EnforcementStageSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// SetLedgerEntries publishes the chain length.
func SetLedgerEntries(n int) {
	LedgerEntries.Set(float64(n))
}
