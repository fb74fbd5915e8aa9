package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Jobs records background maintenance runs.
type Jobs struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	swept    prometheus.Counter
}

// NewJobs registers the job metrics. A nil registerer yields a no-op recorder.
func NewJobs(reg prometheus.Registerer) *Jobs {
	if reg == nil {
		return &Jobs{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of background jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Background job executions by result.",
	}, []string{"job", "result"})
	swept := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "client_state_swept_total",
		Help: "Expired client state rows removed by the sweeper.",
	})
	reg.MustRegister(duration, runs, swept)
	return &Jobs{duration: duration, runs: runs, swept: swept}
}

// ObserveRun records one execution of the named job.
func (j *Jobs) ObserveRun(job string, duration time.Duration, err error) {
	if j == nil || j.duration == nil {
		return
	}
	job = normalizeLabel(job)
	j.duration.WithLabelValues(job).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	j.runs.WithLabelValues(job, result).Inc()
}

// AddSwept counts rows purged by a state sweep.
func (j *Jobs) AddSwept(n int64) {
	if j == nil || j.swept == nil || n <= 0 {
		return
	}
	j.swept.Add(float64(n))
}
