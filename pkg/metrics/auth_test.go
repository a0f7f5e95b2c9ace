package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAuthMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewAuthMetrics(reg)

	metrics.ObserveHashDuration("hash", 120*time.Millisecond)
	metrics.IncLogin("success")
	metrics.IncLogin("failure")
	metrics.IncLockout()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "login_attempts_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch success attempts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "login_attempts_total", "outcome", "failure"); err != nil {
		t.Fatalf("fetch failure attempts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	foundHistogram := false
	foundLockouts := false
	for _, mf := range mfs {
		switch mf.GetName() {
		case "password_hash_duration_seconds":
			foundHistogram = true
		case "account_lockouts_total":
			foundLockouts = true
			if mf.GetMetric()[0].GetCounter().GetValue() != 1 {
				t.Fatalf("expected one lockout recorded")
			}
		}
	}
	if !foundHistogram {
		t.Fatalf("hash duration histogram not registered")
	}
	if !foundLockouts {
		t.Fatalf("lockout counter not registered")
	}
}

func TestAuthMetricsNilReceiversAreNoops(t *testing.T) {
	var metrics *AuthMetrics
	metrics.ObserveHashDuration("verify", time.Second)
	metrics.IncLogin("success")
	metrics.IncLockout()

	empty := NewAuthMetrics(nil)
	empty.IncLogin("failure")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, labelKey, labelValue string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == labelKey && label.GetValue() == labelValue {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, labelKey, labelValue)
}
