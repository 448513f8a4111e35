/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecomputeTotal counts policy recomputations by outcome
	RecomputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodark_recompute_total",
			Help: "Total number of activation recomputations",
		},
		[]string{"user", "policy", "result"},
	)

	// TransitionsTotal counts activation flag writes made by a policy
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodark_transitions_total",
			Help: "Total number of activation flag transitions written by a policy",
		},
		[]string{"user", "activated"},
	)

	// StoreWriteFailuresTotal counts failed settings writes
	StoreWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodark_store_write_failures_total",
			Help: "Total number of failed settings store writes",
		},
		[]string{"user"},
	)

	// ApplyFailuresTotal counts failed side-effect applications
	ApplyFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodark_apply_failures_total",
			Help: "Total number of failed theme applications",
		},
		[]string{"user"},
	)

	// ActivePolicy reports which policy is running for a user (1 = active)
	ActivePolicy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autodark_active_policy",
			Help: "Active activation policy per user",
		},
		[]string{"user", "policy"},
	)

	// ActivationState reports the last observed activation flag (1 = on)
	ActivationState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autodark_activation_state",
			Help: "Last observed activation flag per user",
		},
		[]string{"user"},
	)

	// NextWakeTimestamp reports the next scheduled fixed-window wake as a unix timestamp
	NextWakeTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autodark_next_wake_timestamp_seconds",
			Help: "Unix time of the next scheduled fixed-window recomputation",
		},
		[]string{"user"},
	)

	// OracleRefreshTotal counts oracle refresh attempts
	OracleRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autodark_oracle_refresh_total",
			Help: "Total number of day/night oracle refreshes",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks the number of running per-user schedulers
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autodark_active_sessions",
			Help: "Number of running per-user schedulers",
		},
	)
)

// BoolLabel renders a boolean as a metric label value.
func BoolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
