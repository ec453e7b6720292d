package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Success = "success"
	Failure = "failure"

	Hit     = "hit"
	Miss    = "miss"
	Unknown = "unknown"

	Mean   = "mean"
	Median = "median"
)

// Observer is the process wide metrics instance, registered on the default registry.
var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.collectors()...)
}

// Metrics records the activity of the similarity engine.
type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
}

// New creates a new metrics instance registered on the given registerer.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	p := NewPrometheusMetrics()
	for _, c := range p.collectors() {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return &Metrics{
		mutex:      new(sync.RWMutex),
		prometheus: p,
	}, nil
}

// Build records the outcome and duration of a searcher build.
func (m *Metrics) Build(start time.Time, err error) {
	if err != nil {
		m.prometheus.Builds.WithLabelValues(Failure).Inc()
		return
	}
	m.prometheus.Builds.WithLabelValues(Success).Inc()
	m.prometheus.Duration.Observe(time.Since(start).Seconds())
}

// Iteration records a completed training iteration.
func (m *Metrics) Iteration() {
	m.prometheus.Iterations.Inc()
}

// Classification records the state of the latest classification map.
func (m *Metrics) Classification(items, cells int, mean, median float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.prometheus.Items.Set(float64(items))
	m.prometheus.Cells.Set(float64(cells))
	m.prometheus.Distance.WithLabelValues(Mean).Set(mean)
	m.prometheus.Distance.WithLabelValues(Median).Set(median)
}

// Query records a similarity query of the given kind.
func (m *Metrics) Query(kind, result string) {
	m.prometheus.Queries.WithLabelValues(kind, result).Inc()
}

// Collectors exposes the underlying collectors e.g. for tests.
func (m *Metrics) Collectors() Prometheus {
	return m.prometheus
}
