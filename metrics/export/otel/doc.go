// Package otel publishes goGuard metrics through an OpenTelemetry Meter.
//
// Each counter becomes an Int64ObservableCounter. Guard decisions are one counter with a
// "state" attribute. Histogram buckets are exported as cumulative gauges. A single
// callback reads the engine snapshot per collection; the caller owns the MeterProvider.
package otel
