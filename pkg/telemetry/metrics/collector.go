package metrics

import (
	"fmt"
	"time"

	"contentops/curator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Collector registers and records the pipeline's Prometheus metrics.
// Runs are batch-shaped, so the collector is mostly read at end of run via
// Summary rather than scraped.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Items by run mode and terminal status
	itemsTotal *prometheus.CounterVec

	// Search batches fetched by run mode
	batchesTotal *prometheus.CounterVec

	// Conflict retries of transactional units
	retriesTotal prometheus.Counter

	// Whole-run duration by run mode
	runDuration *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "curator"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "pipeline"
	}
	if len(cfg.RunDurationBuckets) == 0 {
		// Batch runs span seconds to hours
		cfg.RunDurationBuckets = []float64{1, 5, 15, 60, 300, 900, 3600, 14400}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		itemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "items_total",
				Help:      "Total number of work items by run mode and terminal status",
			},
			[]string{"mode", "status"},
		),

		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batches_total",
				Help:      "Total number of search batches fetched",
			},
			[]string{"mode"},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retries_total",
				Help:      "Total number of conflict retries of transactional units",
			},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of whole pipeline runs in seconds",
				Buckets:   cfg.RunDurationBuckets,
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		c.itemsTotal,
		c.batchesTotal,
		c.retriesTotal,
		c.runDuration,
	)

	return c
}

// RecordItem records one work item reaching a terminal status.
func (c *Collector) RecordItem(mode, status string) {
	if !c.config.Enabled {
		return
	}
	c.itemsTotal.WithLabelValues(mode, status).Inc()
}

// RecordBatch records one search batch fetched.
func (c *Collector) RecordBatch(mode string) {
	if !c.config.Enabled {
		return
	}
	c.batchesTotal.WithLabelValues(mode).Inc()
}

// RecordRetry records one conflict retry.
func (c *Collector) RecordRetry() {
	if !c.config.Enabled {
		return
	}
	c.retriesTotal.Inc()
}

// RecordRun records a completed run's duration.
func (c *Collector) RecordRun(mode string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Summary gathers the item counters into a map keyed by
// "<mode>/<status>", for the end-of-run log line.
func (c *Collector) Summary() (map[string]float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	itemsName := fmt.Sprintf("%s_%s_items_total", c.config.Namespace, c.config.Subsystem)

	out := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != itemsName {
			continue
		}
		for _, m := range mf.GetMetric() {
			out[labelKey(m)] = m.GetCounter().GetValue()
		}
	}
	return out, nil
}

func labelKey(m *dto.Metric) string {
	var mode, status string
	for _, lp := range m.GetLabel() {
		switch lp.GetName() {
		case "mode":
			mode = lp.GetValue()
		case "status":
			status = lp.GetValue()
		}
	}
	return mode + "/" + status
}
