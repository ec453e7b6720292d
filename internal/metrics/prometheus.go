package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus holds the collectors of the similarity engine.
type Prometheus struct {
	Builds     *prometheus.CounterVec
	Duration   prometheus.Histogram
	Iterations prometheus.Counter
	Items      prometheus.Gauge
	Cells      prometheus.Gauge
	Distance   *prometheus.GaugeVec
	Queries    *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors, without registering them.
func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "music",
				Subsystem: "similarity",
				Name:      "builds_total",
				Help:      "Number of searcher builds by outcome.",
			}, []string{"result"}),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "music",
				Subsystem: "similarity",
				Name:      "build_duration_seconds",
				Help:      "Time spent normalizing, training and classifying.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			}),
		Iterations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "music",
				Subsystem: "similarity",
				Name:      "training_iterations_total",
				Help:      "Number of completed training iterations.",
			}),
		Items: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "music",
				Subsystem: "similarity",
				Name:      "classified_items",
				Help:      "Number of items in the current classification map.",
			}),
		Cells: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "music",
				Subsystem: "similarity",
				Name:      "occupied_cells",
				Help:      "Number of grid cells holding at least one item.",
			}),
		Distance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "music",
				Subsystem: "similarity",
				Name:      "ref_vectors_distance",
				Help:      "Distance statistic between adjacent reference vectors.",
			}, []string{"stat"}),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "music",
				Subsystem: "similarity",
				Name:      "queries_total",
				Help:      "Number of similarity queries by outcome.",
			}, []string{"kind", "result"}),
	}
}

func (p Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.Builds,
		p.Duration,
		p.Iterations,
		p.Items,
		p.Cells,
		p.Distance,
		p.Queries,
	}
}
