package capval

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks validation statistics using lock-free atomic operations.
// All methods are safe for concurrent use. Metrics implements
// prometheus.Collector so callers can register it on a registry.
type Metrics struct {
	// Run counts
	validationsTotal atomic.Uint64
	validationsValid atomic.Uint64

	// Timing (stored as nanoseconds)
	validationTimeTotal atomic.Uint64
	validationTimeMin   atomic.Uint64
	validationTimeMax   atomic.Uint64

	// Catalog cache
	catalogHits   atomic.Uint64
	catalogMisses atomic.Uint64

	// Violation counts by severity
	errorsTotal   atomic.Uint64
	warningsTotal atomic.Uint64

	// Matrix chunks read across all runs
	chunksRead atomic.Uint64

	// Per-rule timing
	ruleTiming sync.Map // map[string]*ruleMetrics
}

// ruleMetrics tracks statistics for a single rule.
type ruleMetrics struct {
	invocations     atomic.Uint64
	totalTime       atomic.Uint64 // nanoseconds
	violationsFound atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.validationTimeMin.Store(^uint64(0))
	return m
}

// RecordValidation records a completed validation run.
func (m *Metrics) RecordValidation(duration time.Duration, valid bool) {
	m.validationsTotal.Add(1)
	if valid {
		m.validationsValid.Add(1)
	}

	ns := uint64(duration.Nanoseconds())
	m.validationTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.validationTimeMin.Load()
		if ns >= old {
			break
		}
		if m.validationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.validationTimeMax.Load()
		if ns <= old {
			break
		}
		if m.validationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRule records a single rule execution.
func (m *Metrics) RecordRule(name string, duration time.Duration, violations int) {
	v, _ := m.ruleTiming.LoadOrStore(name, &ruleMetrics{})
	rm := v.(*ruleMetrics)

	rm.invocations.Add(1)
	rm.totalTime.Add(uint64(duration.Nanoseconds()))
	rm.violationsFound.Add(uint64(violations))
}

// RecordViolation records an emitted violation by severity.
func (m *Metrics) RecordViolation(severity Severity) {
	switch severity {
	case SeverityError:
		m.errorsTotal.Add(1)
	case SeverityWarning:
		m.warningsTotal.Add(1)
	}
}

// RecordCatalogHit records a catalog cache hit.
func (m *Metrics) RecordCatalogHit() {
	m.catalogHits.Add(1)
}

// RecordCatalogMiss records a catalog cache miss (a load from source).
func (m *Metrics) RecordCatalogMiss() {
	m.catalogMisses.Add(1)
}

// RecordChunk records one matrix chunk read.
func (m *Metrics) RecordChunk() {
	m.chunksRead.Add(1)
}

// ValidationsTotal returns the total number of completed runs.
func (m *Metrics) ValidationsTotal() uint64 {
	return m.validationsTotal.Load()
}

// ValidationsValid returns the number of runs that produced a valid report.
func (m *Metrics) ValidationsValid() uint64 {
	return m.validationsValid.Load()
}

// ErrorsTotal returns the total error-severity violations emitted.
func (m *Metrics) ErrorsTotal() uint64 {
	return m.errorsTotal.Load()
}

// WarningsTotal returns the total warning-severity violations emitted.
func (m *Metrics) WarningsTotal() uint64 {
	return m.warningsTotal.Load()
}

// ChunksRead returns the total matrix chunks read.
func (m *Metrics) ChunksRead() uint64 {
	return m.chunksRead.Load()
}

// CatalogHitRate returns the catalog cache hit rate in [0, 1].
func (m *Metrics) CatalogHitRate() float64 {
	hits := m.catalogHits.Load()
	total := hits + m.catalogMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// AvgValidationTime returns the mean run duration.
func (m *Metrics) AvgValidationTime() time.Duration {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.validationTimeTotal.Load() / total)
}

// RuleStats describes the accumulated statistics for one rule.
type RuleStats struct {
	Name            string
	Invocations     uint64
	TotalTime       time.Duration
	ViolationsFound uint64
}

// RuleStatsSnapshot returns per-rule statistics.
func (m *Metrics) RuleStatsSnapshot() []RuleStats {
	var out []RuleStats
	m.ruleTiming.Range(func(key, value any) bool {
		rm := value.(*ruleMetrics)
		out = append(out, RuleStats{
			Name:            key.(string),
			Invocations:     rm.invocations.Load(),
			TotalTime:       time.Duration(rm.totalTime.Load()),
			ViolationsFound: rm.violationsFound.Load(),
		})
		return true
	})
	return out
}

// Prometheus descriptors.
var (
	descValidationsTotal = prometheus.NewDesc(
		"capval_validations_total",
		"Total number of completed validation runs.",
		nil, nil)
	descValidationsValid = prometheus.NewDesc(
		"capval_validations_valid_total",
		"Number of runs that produced a valid report.",
		nil, nil)
	descViolationsTotal = prometheus.NewDesc(
		"capval_violations_total",
		"Total violations emitted, by severity.",
		[]string{"severity"}, nil)
	descChunksRead = prometheus.NewDesc(
		"capval_matrix_chunks_read_total",
		"Total matrix chunks read across all runs.",
		nil, nil)
	descCatalogLookups = prometheus.NewDesc(
		"capval_catalog_cache_lookups_total",
		"Catalog cache lookups, by result.",
		[]string{"result"}, nil)
	descRuleInvocations = prometheus.NewDesc(
		"capval_rule_invocations_total",
		"Rule executions, by rule name.",
		[]string{"rule"}, nil)
	descRuleViolations = prometheus.NewDesc(
		"capval_rule_violations_total",
		"Violations emitted, by rule name.",
		[]string{"rule"}, nil)
)

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- descValidationsTotal
	ch <- descValidationsValid
	ch <- descViolationsTotal
	ch <- descChunksRead
	ch <- descCatalogLookups
	ch <- descRuleInvocations
	ch <- descRuleViolations
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(descValidationsTotal,
		prometheus.CounterValue, float64(m.validationsTotal.Load()))
	ch <- prometheus.MustNewConstMetric(descValidationsValid,
		prometheus.CounterValue, float64(m.validationsValid.Load()))
	ch <- prometheus.MustNewConstMetric(descViolationsTotal,
		prometheus.CounterValue, float64(m.errorsTotal.Load()), "error")
	ch <- prometheus.MustNewConstMetric(descViolationsTotal,
		prometheus.CounterValue, float64(m.warningsTotal.Load()), "warning")
	ch <- prometheus.MustNewConstMetric(descChunksRead,
		prometheus.CounterValue, float64(m.chunksRead.Load()))
	ch <- prometheus.MustNewConstMetric(descCatalogLookups,
		prometheus.CounterValue, float64(m.catalogHits.Load()), "hit")
	ch <- prometheus.MustNewConstMetric(descCatalogLookups,
		prometheus.CounterValue, float64(m.catalogMisses.Load()), "miss")

	m.ruleTiming.Range(func(key, value any) bool {
		rm := value.(*ruleMetrics)
		name := key.(string)
		ch <- prometheus.MustNewConstMetric(descRuleInvocations,
			prometheus.CounterValue, float64(rm.invocations.Load()), name)
		ch <- prometheus.MustNewConstMetric(descRuleViolations,
			prometheus.CounterValue, float64(rm.violationsFound.Load()), name)
		return true
	})
}

// Reset clears all metrics. Intended for tests.
func (m *Metrics) Reset() {
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.validationTimeTotal.Store(0)
	m.validationTimeMin.Store(^uint64(0))
	m.validationTimeMax.Store(0)
	m.catalogHits.Store(0)
	m.catalogMisses.Store(0)
	m.errorsTotal.Store(0)
	m.warningsTotal.Store(0)
	m.chunksRead.Store(0)
	m.ruleTiming.Range(func(key, _ any) bool {
		m.ruleTiming.Delete(key)
		return true
	})
}
