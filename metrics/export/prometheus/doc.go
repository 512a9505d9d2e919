// Package prometheus renders goGuard counters in the Prometheus text exposition format.
//
// Counters are named goguard_*_total. Guard decisions share one counter,
// goguard_guard_decisions_total, labelled by state. The hydrate histogram is
// goguard_hydrate_latency_seconds.
//
// The exporter does not register with a global registry; callers mount Handler.
package prometheus
