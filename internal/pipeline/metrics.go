package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's prometheus collectors.
type Metrics struct {
	Kept            prometheus.Counter
	Dropped         prometheus.Counter
	TransformErrors prometheus.Counter
	ObjectSize      prometheus.Histogram
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Kept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taps",
			Name:      "items_kept_total",
			Help:      "Items that passed the filter.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taps",
			Name:      "items_dropped_total",
			Help:      "Items discarded by the filter.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taps",
			Name:      "transform_errors_total",
			Help:      "Items the transformer failed on.",
		}),
		ObjectSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taps",
			Name:      "item_object_size_bytes",
			Help:      "In-memory footprint of processed items.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		}),
	}

	for _, c := range []prometheus.Collector{m.Kept, m.Dropped, m.TransformErrors, m.ObjectSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
