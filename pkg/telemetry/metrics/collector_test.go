package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"contentops/curator/pkg/config"
)

func newTestCollector(enabled bool) *Collector {
	cfg := &config.MetricsConfig{Enabled: enabled}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func TestCollectorSummary(t *testing.T) {
	c := newTestCollector(true)

	c.RecordItem("purge", "DELETED")
	c.RecordItem("purge", "DELETED")
	c.RecordItem("purge", "BLOCKED")
	c.RecordItem("export", "EXPORTED")
	c.RecordBatch("purge")
	c.RecordRetry()
	c.RecordRun("purge", 3*time.Second)

	summary, err := c.Summary()
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}

	tests := []struct {
		key  string
		want float64
	}{
		{"purge/DELETED", 2},
		{"purge/BLOCKED", 1},
		{"export/EXPORTED", 1},
	}
	for _, tt := range tests {
		if got := summary[tt.key]; got != tt.want {
			t.Errorf("summary[%q] = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestCollectorDisabled(t *testing.T) {
	c := newTestCollector(false)

	c.RecordItem("purge", "DELETED")
	c.RecordBatch("purge")
	c.RecordRetry()
	c.RecordRun("purge", time.Second)

	summary, err := c.Summary()
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("disabled collector recorded %v", summary)
	}
}

func TestCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != "curator" || cfg.Subsystem != "pipeline" {
		t.Errorf("defaults = %q/%q", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.RunDurationBuckets) == 0 {
		t.Error("run duration buckets not defaulted")
	}
}
