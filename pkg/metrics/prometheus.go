// Package metrics provides Prometheus metrics for a pitchmap run.
//
// The tool is a one-shot CLI, so nothing is scraped: the registry is dumped
// in text exposition format at the end of a run when a metrics file is set.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the run metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Fetch
	matchesFetched  prometheus.Counter
	eventsFetched   prometheus.Counter
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec

	// Preprocess
	playerEvents  prometheus.Gauge
	pointsMapped  prometheus.Gauge
	rowsDropped   *prometheus.CounterVec
	categoryRows  *prometheus.GaugeVec
	mappedPercent prometheus.Gauge

	// Render
	figuresSaved   *prometheus.CounterVec
	figuresSkipped *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitchmap",
		subsystem:        "run",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_fetched_total",
		Help:        "Matches involving the team returned by the provider",
		ConstLabels: m.constLabels,
	})

	m.eventsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_fetched_total",
		Help:        "Event records fetched across all matches",
		ConstLabels: m.constLabels,
	})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "provider_request_duration_milliseconds",
		Help:        "Provider request latency in milliseconds by resource",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"resource"})

	m.requestErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "provider_request_errors_total",
		Help:        "Failed provider requests by resource",
		ConstLabels: m.constLabels,
	}, []string{"resource"})

	m.playerEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "player_events",
		Help:        "Events attributed to the requested player",
		ConstLabels: m.constLabels,
	})

	m.pointsMapped = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "points_mapped",
		Help:        "Player events with a usable pitch location",
		ConstLabels: m.constLabels,
	})

	m.rowsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_dropped_total",
		Help:        "Player events excluded from maps by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.categoryRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "category_points",
		Help:        "Mapped points per category subset",
		ConstLabels: m.constLabels,
	}, []string{"subset"})

	m.mappedPercent = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "mapped_ratio_percent",
		Help:        "Share of player events that made it onto the maps",
		ConstLabels: m.constLabels,
	})

	m.figuresSaved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "figures_saved_total",
		Help:        "Figures written to disk by figure id",
		ConstLabels: m.constLabels,
	}, []string{"figure"})

	m.figuresSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "figures_skipped_total",
		Help:        "Optional figures skipped because their subset was empty",
		ConstLabels: m.constLabels,
	}, []string{"figure"})

	m.renderDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "render_duration_milliseconds",
		Help:        "Time to draw and encode a figure in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"figure"})
}

// Registry returns the manager's registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordMatchesFetched adds n matches.
func (m *Manager) RecordMatchesFetched(n int) { m.matchesFetched.Add(float64(n)) }

// RecordEventsFetched adds n events.
func (m *Manager) RecordEventsFetched(n int) { m.eventsFetched.Add(float64(n)) }

// RecordRequest observes one provider request.
func (m *Manager) RecordRequest(resource string, latencyMs float64, err error) {
	m.requestDuration.WithLabelValues(resource).Observe(latencyMs)
	if err != nil {
		m.requestErrors.WithLabelValues(resource).Inc()
	}
}

// UpdatePlayerEvents sets the player event gauge.
func (m *Manager) UpdatePlayerEvents(n int) { m.playerEvents.Set(float64(n)) }

// UpdatePointsMapped sets the mapped point gauge.
func (m *Manager) UpdatePointsMapped(n int) { m.pointsMapped.Set(float64(n)) }

// RecordRowDropped counts one excluded row.
func (m *Manager) RecordRowDropped(reason string) { m.rowsDropped.WithLabelValues(reason).Inc() }

// UpdateCategoryPoints sets the size of a named subset.
func (m *Manager) UpdateCategoryPoints(subset string, n int) {
	m.categoryRows.WithLabelValues(subset).Set(float64(n))
}

// UpdateMappedPercent sets the mapped ratio.
func (m *Manager) UpdateMappedPercent(pct float64) { m.mappedPercent.Set(pct) }

// RecordFigureSaved counts a saved figure and its render time.
func (m *Manager) RecordFigureSaved(figure string, latencyMs float64) {
	m.figuresSaved.WithLabelValues(figure).Inc()
	m.renderDuration.WithLabelValues(figure).Observe(latencyMs)
}

// RecordFigureSkipped counts a skipped optional figure.
func (m *Manager) RecordFigureSkipped(figure string) { m.figuresSkipped.WithLabelValues(figure).Inc() }

// WriteTextfile writes the registry to path in text exposition format.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}

// Global convenience functions.

// Default returns the global manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
