/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()

	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Failed to read metric: %v", err)
	}
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func TestCollectors_Defined(t *testing.T) {
	collectors := map[string]prometheus.Collector{
		"RecomputeTotal":          RecomputeTotal,
		"TransitionsTotal":        TransitionsTotal,
		"StoreWriteFailuresTotal": StoreWriteFailuresTotal,
		"ApplyFailuresTotal":      ApplyFailuresTotal,
		"ActivePolicy":            ActivePolicy,
		"ActivationState":         ActivationState,
		"NextWakeTimestamp":       NextWakeTimestamp,
		"OracleRefreshTotal":      OracleRefreshTotal,
		"ActiveSessions":          ActiveSessions,
	}

	for name, c := range collectors {
		if c == nil {
			t.Errorf("%s should not be nil", name)
		}
	}
}

func TestRecomputeTotal_Labels(t *testing.T) {
	counter, err := RecomputeTotal.GetMetricWithLabelValues("metrics-test", "fixed-window", "changed")
	if err != nil {
		t.Fatalf("Failed to get metric with labels: %v", err)
	}

	before := value(t, counter)
	counter.Inc()
	if got := value(t, counter); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestStoreWriteFailuresTotal_Labels(t *testing.T) {
	if _, err := StoreWriteFailuresTotal.GetMetricWithLabelValues("metrics-test"); err != nil {
		t.Fatalf("Failed to get metric with labels: %v", err)
	}
	if _, err := StoreWriteFailuresTotal.GetMetricWithLabelValues("a", "b"); err == nil {
		t.Error("expected an error for a wrong label count")
	}
}

func TestActivePolicy_Gauge(t *testing.T) {
	gauge, err := ActivePolicy.GetMetricWithLabelValues("metrics-test", "oracle")
	if err != nil {
		t.Fatalf("Failed to get metric with labels: %v", err)
	}

	gauge.Set(1)
	if got := value(t, gauge); got != 1 {
		t.Errorf("gauge = %v, want 1", got)
	}
	gauge.Set(0)
	if got := value(t, gauge); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}

func TestNextWakeTimestamp_Delete(t *testing.T) {
	NextWakeTimestamp.WithLabelValues("metrics-test").Set(1773180000)
	if !NextWakeTimestamp.DeleteLabelValues("metrics-test") {
		t.Error("expected the series to be deleted")
	}
}

func TestBoolLabel(t *testing.T) {
	if BoolLabel(true) != "true" || BoolLabel(false) != "false" {
		t.Errorf("BoolLabel() = %q/%q", BoolLabel(true), BoolLabel(false))
	}
}
