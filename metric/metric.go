// Package metric exports mmapfile events as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	pc := metric.NewPrometheusCollector("myapp")
//	reg.MustRegister(pc)
//	f, _ := mmapfile.Open(path, mmapfile.CreateIfMissing, mmapfile.WithMetricsCollector(pc))
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/mmapfile"
)

var _ mmapfile.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements mmapfile.MetricsCollector and
// prometheus.Collector. One collector may be shared by many files.
type PrometheusCollector struct {
	grows         *prometheus.CounterVec
	growDuration  prometheus.Histogram
	mappedBytes   prometheus.Gauge
	flushes       *prometheus.CounterVec
	flushDuration *prometheus.HistogramVec
	flushedBytes  prometheus.Counter
	writes        prometheus.Counter
	writtenBytes  prometheus.Counter
	closes        *prometheus.CounterVec
}

// NewPrometheusCollector creates the metrics under the given namespace.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		grows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "grows_total",
			Help:      "Number of grow attempts by outcome",
		}, []string{"result"}),
		growDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "grow_duration_seconds",
			Help:      "Time spent extending and remapping files",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		mappedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "last_grow_capacity_bytes",
			Help:      "Capacity reached by the most recent successful grow",
		}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "flushes_total",
			Help:      "Number of flushes by mode and outcome",
		}, []string{"mode", "result"}),
		flushDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "flush_duration_seconds",
			Help:      "Time spent syncing dirty pages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		flushedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "flushed_bytes_total",
			Help:      "Bytes handed to the platform sync call",
		}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "writes_total",
			Help:      "Number of successful writes and appends",
		}),
		writtenBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "written_bytes_total",
			Help:      "Bytes copied into mappings",
		}),
		closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mmapfile",
			Name:      "closes_total",
			Help:      "Number of closes by outcome",
		}, []string{"result"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordGrow implements mmapfile.MetricsCollector.
func (c *PrometheusCollector) RecordGrow(_, to int64, duration time.Duration, err error) {
	c.grows.WithLabelValues(result(err)).Inc()
	c.growDuration.Observe(duration.Seconds())
	if err == nil {
		c.mappedBytes.Set(float64(to))
	}
}

// RecordFlush implements mmapfile.MetricsCollector.
func (c *PrometheusCollector) RecordFlush(mode mmapfile.FlushMode, bytes int64, duration time.Duration, err error) {
	c.flushes.WithLabelValues(mode.String(), result(err)).Inc()
	c.flushDuration.WithLabelValues(mode.String()).Observe(duration.Seconds())
	c.flushedBytes.Add(float64(bytes))
}

// RecordWrite implements mmapfile.MetricsCollector.
func (c *PrometheusCollector) RecordWrite(bytes int) {
	c.writes.Inc()
	c.writtenBytes.Add(float64(bytes))
}

// RecordClose implements mmapfile.MetricsCollector.
func (c *PrometheusCollector) RecordClose(_ int64, err error) {
	c.closes.WithLabelValues(result(err)).Inc()
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

func (c *PrometheusCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.grows, c.growDuration, c.mappedBytes,
		c.flushes, c.flushDuration, c.flushedBytes,
		c.writes, c.writtenBytes, c.closes,
	}
}
