// Package metrics collects Prometheus metrics for the batch-packing
// pipeline, shaped after the teacher's internal/metrics.Collector:
// monotonic counters for cumulative work, a histogram for the adaptive
// search's probe count (directly testing SPEC_FULL.md invariant 4 in
// production), and gauges for the current queue depths.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for one pipeline run.
type Collector struct {
	batchesPacked     prometheus.Counter
	bytesWritten      prometheus.Counter
	statementsPacked  prometheus.Counter
	statementsSkipped prometheus.Counter
	probesPerBatch    prometheus.Histogram
	batchFillRatio    prometheus.Histogram

	batchQueueDepth   prometheus.Gauge
	datasetQueueDepth prometheus.Gauge

	publishAttempts prometheus.Counter
	publishFailures prometheus.Counter
}

// NewCollector creates and registers a Collector against the default
// Prometheus registry.
func NewCollector() *Collector {
	c := &Collector{
		batchesPacked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfpack_batches_packed_total",
			Help: "Total number of sized datasets emitted by the Packer pool",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfpack_bytes_written_total",
			Help: "Total bytes written to output files",
		}),
		statementsPacked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfpack_statements_packed_total",
			Help: "Total statements included in an emitted batch",
		}),
		statementsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfpack_statements_skipped_total",
			Help: "Total statements skipped for exceeding the byte cap alone",
		}),
		probesPerBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rdfpack_search_probes_per_batch",
			Help:    "Adaptive-size-search probes consumed per emitted batch",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 12, 16, 20},
		}),
		batchFillRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rdfpack_batch_fill_ratio",
			Help:    "Serialized size over MaxBytes for each emitted batch",
			Buckets: []float64{0.5, 0.7, 0.8, 0.9, 0.95, 0.98, 1.0},
		}),
		batchQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rdfpack_batch_queue_depth",
			Help: "Current number of micro-batches buffered between Reader and Packer pool",
		}),
		datasetQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rdfpack_dataset_queue_depth",
			Help: "Current number of sized datasets buffered between Packer pool and Writer",
		}),
		publishAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfpack_publish_attempts_total",
			Help: "Total publish submissions attempted",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfpack_publish_failures_total",
			Help: "Total publish submissions that failed",
		}),
	}

	prometheus.MustRegister(
		c.batchesPacked,
		c.bytesWritten,
		c.statementsPacked,
		c.statementsSkipped,
		c.probesPerBatch,
		c.batchFillRatio,
		c.batchQueueDepth,
		c.datasetQueueDepth,
		c.publishAttempts,
		c.publishFailures,
	)

	return c
}

// RecordBatch records one emitted sized dataset.
func (c *Collector) RecordBatch(bytes, statements, skipped, probes int, fillRatio float64) {
	c.batchesPacked.Inc()
	c.bytesWritten.Add(float64(bytes))
	c.statementsPacked.Add(float64(statements))
	c.statementsSkipped.Add(float64(skipped))
	c.probesPerBatch.Observe(float64(probes))
	c.batchFillRatio.Observe(fillRatio)
}

// SetQueueDepths updates the current channel occupancy gauges.
func (c *Collector) SetQueueDepths(batches, datasets int) {
	c.batchQueueDepth.Set(float64(batches))
	c.datasetQueueDepth.Set(float64(datasets))
}

// RecordPublishAttempt records one publish submission outcome.
func (c *Collector) RecordPublishAttempt(success bool) {
	c.publishAttempts.Inc()
	if !success {
		c.publishFailures.Inc()
	}
}

// StartServer starts a Prometheus metrics HTTP server on port, serving
// /metrics in OpenMetrics/Prometheus text format. It blocks until the
// server stops.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
