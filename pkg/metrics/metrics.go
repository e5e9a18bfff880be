// Package metrics exposes training and alerting counters in Prometheus format.
package metrics

import (
	"strconv"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Alert outcomes.
const (
	AlertSent    = "sent"
	AlertSkipped = "skipped"
	AlertFailed  = "failed"
)

// Recorder holds the collectors for one process.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	mse      *prometheus.GaugeVec
	duration prometheus.Histogram
	alerts   *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regtrain_runs_total",
				Help: "Total number of training runs by final status",
			},
			[]string{"status"},
		),
		mse: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "regtrain_last_mse",
				Help: "Mean squared error of the last successful run",
			},
			[]string{"experiment"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "regtrain_train_duration_seconds",
				Help:    "Duration of training runs",
				Buckets: prometheus.DefBuckets,
			},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regtrain_alerts_total",
				Help: "Failure notifications by outcome",
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regtrain_http_requests_total",
				Help: "Tracking API requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
	r.registry.MustRegister(r.runs, r.mse, r.duration, r.alerts, r.requests)
	return r
}

// Registry returns the registry backing this recorder, e.g. for promhttp.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records a finished or failed run.
func (r *Recorder) ObserveRun(status domain.RunStatus, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(string(status)).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ObserveMSE records the metric of a successful run.
func (r *Recorder) ObserveMSE(experiment string, mse float64) {
	if r == nil {
		return
	}
	r.mse.WithLabelValues(experiment).Set(mse)
}

// ObserveAlert records a notification outcome.
func (r *Recorder) ObserveAlert(outcome string) {
	if r == nil {
		return
	}
	r.alerts.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one served API request.
func (r *Recorder) ObserveRequest(route string, code int) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// WriteTextfile dumps the current values for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
