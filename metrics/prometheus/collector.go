// Package prometheus exports chunkarray metrics to Prometheus.
package prometheus

import (
	"time"

	"github.com/hupe1980/chunkarray"
	"github.com/prometheus/client_golang/prometheus"
)

var _ chunkarray.MetricsCollector = (*Collector)(nil)

// Collector implements chunkarray.MetricsCollector with Prometheus counters
// and histograms.
type Collector struct {
	loadLatency *prometheus.HistogramVec
	loads       *prometheus.CounterVec
	cacheHits   prometheus.Counter
	copyLatency *prometheus.HistogramVec
	copyChunks  prometheus.Histogram
	copied      prometheus.Counter
}

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Default "chunkarray".
	Namespace string
	// ConstLabels are attached to every metric, e.g. {"dataset": "scan-01"}.
	ConstLabels prometheus.Labels
	// Buckets for the latency histograms. Default prometheus.DefBuckets.
	Buckets []float64
}

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer, opts Options) (*Collector, error) {
	if opts.Namespace == "" {
		opts.Namespace = "chunkarray"
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = prometheus.DefBuckets
	}

	c := &Collector{
		loadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "chunk_load_duration_seconds",
			Help:        "Latency of chunk loads",
			ConstLabels: opts.ConstLabels,
			Buckets:     opts.Buckets,
		}, []string{"status"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "chunk_loads_total",
			Help:        "Total chunk loads",
			ConstLabels: opts.ConstLabels,
		}, []string{"status"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "chunk_cache_hits_total",
			Help:        "Accesses served by the resident chunk",
			ConstLabels: opts.ConstLabels,
		}),
		copyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "copy_range_duration_seconds",
			Help:        "Latency of bulk range copies",
			ConstLabels: opts.ConstLabels,
			Buckets:     opts.Buckets,
		}, []string{"status"}),
		copyChunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "copy_range_chunks",
			Help:        "Grid cells visited per range copy",
			ConstLabels: opts.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		}),
		copied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "copied_elements_total",
			Help:        "Elements written by range copies",
			ConstLabels: opts.ConstLabels,
		}),
	}

	if reg != nil {
		for _, m := range []prometheus.Collector{c.loadLatency, c.loads, c.cacheHits, c.copyLatency, c.copyChunks, c.copied} {
			if err := reg.Register(m); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// RecordLoad implements chunkarray.MetricsCollector.
func (c *Collector) RecordLoad(_ int, d time.Duration, err error) {
	s := status(err)
	c.loadLatency.WithLabelValues(s).Observe(d.Seconds())
	c.loads.WithLabelValues(s).Inc()
}

// RecordCacheHit implements chunkarray.MetricsCollector.
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCopyRange implements chunkarray.MetricsCollector.
func (c *Collector) RecordCopyRange(chunks, elements int, d time.Duration, err error) {
	c.copyLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	c.copyChunks.Observe(float64(chunks))
	if err == nil {
		c.copied.Add(float64(elements))
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
