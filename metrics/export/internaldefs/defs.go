package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef names one goGuard counter for exporters.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// HistogramDef names one goGuard histogram for exporters.
type HistogramDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goGuard.MetricHydrateRestored, Name: "goguard_hydrate_restored_total", Help: "Hydrations that restored a persisted session."},
	{ID: goGuard.MetricHydrateEmpty, Name: "goguard_hydrate_empty_total", Help: "Hydrations that found no persisted session."},
	{ID: goGuard.MetricHydratePurged, Name: "goguard_hydrate_purged_total", Help: "Hydrations that purged a malformed or stale session."},
	{ID: goGuard.MetricLoginSuccess, Name: "goguard_login_success_total", Help: "Successful sign-ins."},
	{ID: goGuard.MetricLoginFailure, Name: "goguard_login_failure_total", Help: "Rejected sign-ins."},
	{ID: goGuard.MetricLoginDemo, Name: "goguard_login_demo_total", Help: "Sign-ins that produced a demo identity."},
	{ID: goGuard.MetricLogout, Name: "goguard_logout_total", Help: "Sign-outs of an active session."},
	{ID: goGuard.MetricSessionInvalidated, Name: "goguard_session_invalidated_total", Help: "Sessions cleared after a backend 401 or 403."},
	{ID: goGuard.MetricProfileUpdated, Name: "goguard_profile_updated_total", Help: "Profile updates applied to the session."},
	{ID: goGuard.MetricStorageFailure, Name: "goguard_storage_failure_total", Help: "Session storage read, write and purge errors."},
}

// LabeledDef is one series of a counter split by a label.
type LabeledDef struct {
	ID    goGuard.MetricID
	Value string
}

// Guard decisions are exported as one counter with a state label.
const (
	GuardDecisionName  = "goguard_guard_decisions_total"
	GuardDecisionHelp  = "Guard decisions by resulting state."
	GuardDecisionLabel = "state"
)

// GuardDecisionDefs maps the guard counters onto GuardDecisionLabel values.
var GuardDecisionDefs = []LabeledDef{
	{ID: goGuard.MetricGuardLoading, Value: "loading"},
	{ID: goGuard.MetricGuardUnauthenticated, Value: "unauthenticated"},
	{ID: goGuard.MetricGuardForbidden, Value: "forbidden"},
	{ID: goGuard.MetricGuardAuthorized, Value: "authorized"},
}

// Audit backpressure counter.
const (
	AuditDroppedName = "goguard_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goGuard.MetricHydrateLatency, Name: "goguard_hydrate_latency_seconds", Help: "Hydrate latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, matching the engine buckets.
var HistogramBounds = []string{
	"0.001",
	"0.002",
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"+Inf",
}

// HistogramBoundSuffix are the bounds in a form usable inside metric names.
var HistogramBoundSuffix = []string{
	"0_001",
	"0_002",
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, padding missing buckets with zero.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
