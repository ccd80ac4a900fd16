package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	t.Fatalf("metric %s not registered", name)
	return nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, pair := range metric.GetLabel() {
		if pair.GetName() == name {
			return pair.GetValue()
		}
	}
	return ""
}

func TestCronJobMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("invitation-expiry")
	m.IncSuccess("invitation-expiry")
	m.IncFailure("waitlist-digest")

	success := gatherMetric(t, reg, "torquehub_cron_job_success")
	if len(success.GetMetric()) != 1 {
		t.Fatalf("expected one success series, got %d", len(success.GetMetric()))
	}
	series := success.GetMetric()[0]
	if labelValue(series, "job") != "invitation-expiry" {
		t.Fatalf("unexpected job label %q", labelValue(series, "job"))
	}
	if got := series.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}

	failure := gatherMetric(t, reg, "torquehub_cron_job_failure")
	if got := failure.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestCronJobMetricsDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("invitation-expiry", 1500*time.Millisecond)

	duration := gatherMetric(t, reg, "torquehub_cron_job_duration_seconds")
	histogram := duration.GetMetric()[0].GetHistogram()
	if histogram.GetSampleCount() != 1 {
		t.Fatalf("expected one observation, got %d", histogram.GetSampleCount())
	}
	if got := histogram.GetSampleSum(); got != 1.5 {
		t.Fatalf("expected sum 1.5, got %v", got)
	}
}

func TestCronJobMetricsUnknownLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("")
	success := gatherMetric(t, reg, "torquehub_cron_job_success")
	if labelValue(success.GetMetric()[0], "job") != "unknown" {
		t.Fatalf("expected unknown label, got %q", labelValue(success.GetMetric()[0], "job"))
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.IncSuccess("x")
	m.IncFailure("x")
	m.ObserveDuration("x", time.Second)

	unregistered := NewCronJobMetrics(nil)
	unregistered.IncSuccess("x")
	unregistered.ObserveDuration("x", time.Second)
}
