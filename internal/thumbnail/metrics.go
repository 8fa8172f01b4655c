package thumbnail

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Job outcomes.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	jobs        *prometheus.CounterVec
	renditions  *prometheus.CounterVec
	jobDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thumbnail_jobs_total",
				Help: "Thumbnail jobs handled, by outcome.",
			},
			[]string{"status"},
		),
		renditions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thumbnail_renditions_total",
				Help: "Thumbnail renditions written, by width and outcome.",
			},
			[]string{"width", "status"},
		),
		jobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "thumbnail_job_duration_seconds",
				Help:    "Time spent processing a thumbnail job.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.jobs, m.renditions, m.jobDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
