// Package metrics counts what a scan or aggregation run saw. Runs are
// offline, so the registry is written to a textfile for the node exporter
// instead of being served.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Slot states and sample outcomes used as label values.
const (
	SlotPresent = "present"
	SlotMissing = "missing"

	SampleAccepted = "accepted"
	SampleRejected = "rejected"
)

// Recorder holds the counters of one process. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	slots        *prometheus.CounterVec
	samples      *prometheus.CounterVec
	completeness *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
}

// New creates a recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		slots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfiscan_slots_total",
				Help: "Number of 15 minute slots produced by the scanner",
			},
			[]string{"state"},
		),
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfiscan_samples_total",
				Help: "Number of loaded samples by amplifier health outcome",
			},
			[]string{"outcome"},
		),
		completeness: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rfiscan_completeness_ratio",
				Help: "Present files over expected files in the corrected time range",
			},
			[]string{"polarisation", "azimuth", "band"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rfiscan_operation_duration_seconds",
				Help:    "Duration of scan and aggregate operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	r.registry.MustRegister(r.slots, r.samples, r.completeness, r.duration)
	return r
}

// RecordSlot counts one slot in the given state.
func (r *Recorder) RecordSlot(state string) {
	if r == nil {
		return
	}
	r.slots.WithLabelValues(state).Inc()
}

// RecordSample counts one loaded sample with the given outcome.
func (r *Recorder) RecordSample(outcome string) {
	if r == nil {
		return
	}
	r.samples.WithLabelValues(outcome).Inc()
}

// SetCompleteness records the completeness ratio (0..1) of one configuration.
func (r *Recorder) SetCompleteness(pol string, az, band int, ratio float64) {
	if r == nil {
		return
	}
	r.completeness.WithLabelValues(pol, strconv.Itoa(az), strconv.Itoa(band)).Set(ratio)
}

// ObserveDuration records how long an operation took.
func (r *Recorder) ObserveDuration(operation string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
