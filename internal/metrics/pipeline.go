// Package metrics provides Prometheus metrics for the per-frame pass and the
// exposure controller.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exposureISO = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "histonode",
		Subsystem: "exposure",
		Name:      "iso",
		Help:      "Current sensor ISO",
	})

	exposureShutter = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "histonode",
		Subsystem: "exposure",
		Name:      "shutter_microseconds",
		Help:      "Current exposure time",
	})

	exposureQuantum = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "histonode",
		Subsystem: "exposure",
		Name:      "quantum",
		Help:      "Exposure product in ISO-50 shutter units",
	})

	exposureLocked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "histonode",
		Subsystem: "exposure",
		Name:      "locked",
		Help:      "1 while exposure lock is engaged",
	})

	exposureSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "histonode",
		Subsystem: "exposure",
		Name:      "steps_total",
		Help:      "Metering steps by branch",
	}, []string{"branch", "blocked"})

	exposureReinits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "histonode",
		Subsystem: "exposure",
		Name:      "reinit_total",
		Help:      "Out-of-range exposure resets",
	})

	passes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "histonode",
		Subsystem: "pipeline",
		Name:      "passes_total",
		Help:      "Per-frame passes by outcome",
	}, []string{"outcome"})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "histonode",
		Subsystem: "pipeline",
		Name:      "pass_duration_seconds",
		Help:      "Time spent in one processed pass",
		Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
	})

	zonePopulation = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "histonode",
		Subsystem: "histogram",
		Name:      "zone_samples",
		Help:      "Luma samples per brightness zone in the last processed frame",
	}, []string{"zone"})

	regionClaims = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "histonode",
		Subsystem: "overlay",
		Name:      "region_claims_total",
		Help:      "Overlay scratch region claims",
	}, []string{"region"})

	// Local cache for SSE exporter access.
	cache   PipelineMetrics
	cacheMu sync.RWMutex
)

// PipelineMetrics holds current values for the SSE exporter and the API.
type PipelineMetrics struct {
	Processed uint64
	Skipped   uint64
	ISO       int32
	Shutter   int32
	Quantum   int32
	Locked    bool
	LastPass  time.Duration
}

// SetExposure records the live exposure pair.
func SetExposure(iso, shutter, quantum int32, locked bool) {
	exposureISO.Set(float64(iso))
	exposureShutter.Set(float64(shutter))
	exposureQuantum.Set(float64(quantum))
	lockedValue := 0.0
	if locked {
		lockedValue = 1
	}
	exposureLocked.Set(lockedValue)

	updateCache(func(m *PipelineMetrics) {
		m.ISO, m.Shutter, m.Quantum, m.Locked = iso, shutter, quantum, locked
	})
}

// RecordStep counts one metering step.
func RecordStep(branch string, blocked, reinit bool) {
	exposureSteps.WithLabelValues(branch, strconv.FormatBool(blocked)).Inc()
	if reinit {
		exposureReinits.Inc()
	}
}

// RecordPass counts a processed pass and its duration.
func RecordPass(d time.Duration) {
	passes.WithLabelValues("processed").Inc()
	passDuration.Observe(d.Seconds())
	updateCache(func(m *PipelineMetrics) {
		m.Processed++
		m.LastPass = d
	})
}

// RecordSkip counts a pass that short-circuited for reason.
func RecordSkip(reason string) {
	passes.WithLabelValues(reason).Inc()
	updateCache(func(m *PipelineMetrics) { m.Skipped++ })
}

// SetZone records the population of one luma zone.
func SetZone(zone string, samples uint32) {
	zonePopulation.WithLabelValues(zone).Set(float64(samples))
}

// RecordClaim counts a claim of overlay region.
func RecordClaim(region int) {
	regionClaims.WithLabelValues(strconv.Itoa(region)).Inc()
}

// GetPipelineMetrics returns a copy of the current values.
func GetPipelineMetrics() PipelineMetrics {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	return cache
}

func updateCache(update func(*PipelineMetrics)) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	update(&cache)
}
