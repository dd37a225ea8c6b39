package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dynamo_league"

// Recorder wraps the prometheus collectors for the roster engine. A nil Recorder is a no-op.
type Recorder struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	jobRuns     *prometheus.CounterVec
	jobPlayers  *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	httpLatency *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "player_transitions_total",
			Help:      "Committed player lifecycle transitions.",
		}, []string{"transition"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_conflicts_total",
			Help:      "Player commits rejected because the stored version moved.",
		}, []string{"operation"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job executions by outcome.",
		}, []string{"job", "outcome"}),
		jobPlayers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_players_total",
			Help:      "Players handled by scheduled jobs by result.",
		}, []string{"job", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Scheduled job run time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(
		r.transitions, r.conflicts, r.jobRuns, r.jobPlayers, r.jobDuration, r.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) RecordTransition(transition string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(transition).Inc()
}

func (r *Recorder) RecordConflict(operation string) {
	if r == nil {
		return
	}
	r.conflicts.WithLabelValues(operation).Inc()
}

// RecordJobRun tracks one job execution and how many players it finalized, skipped or failed.
func (r *Recorder) RecordJobRun(job string, duration time.Duration, transitioned, skipped, failed int, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.jobRuns.WithLabelValues(job, outcome).Inc()
	r.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	r.jobPlayers.WithLabelValues(job, "transitioned").Add(float64(transitioned))
	r.jobPlayers.WithLabelValues(job, "skipped").Add(float64(skipped))
	r.jobPlayers.WithLabelValues(job, "failed").Add(float64(failed))
}

func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.httpLatency.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
