// Package metrics pushes per-run gauges to a Prometheus Pushgateway
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

const metricNamespace = "jenkinsbuilder"

// JobName is the Pushgateway job the gauges are grouped under
const JobName = "jenkinsbuilder"

// Run is what a finished invocation reports
type Run struct {
	Project   string
	Command   types.Command
	Duration  time.Duration
	Succeeded bool
	Processes int
}

// Recorder holds the run gauges
type Recorder struct {
	url    string
	client *http.Client

	Duration  prometheus.Gauge
	Success   prometheus.Gauge
	Processes prometheus.Gauge
}

// NewRecorder creates a recorder pushing to url. An empty url disables
// pushing.
func NewRecorder(url string) *Recorder {
	return &Recorder{
		url: url,
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		Success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "run_success",
			Help:      "1 if the last run succeeded, 0 otherwise",
		}),
		Processes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "child_processes_total",
			Help:      "Engine tool processes started by the last run",
		}),
	}
}

// WithClient sets the HTTP client used for pushing
func (r *Recorder) WithClient(client *http.Client) *Recorder {
	r.client = client
	return r
}

// Enabled reports whether a Pushgateway is configured
func (r *Recorder) Enabled() bool {
	return r.url != ""
}

// Push records run and replaces the metrics of its project/command group
func (r *Recorder) Push(run Run) error {
	if !r.Enabled() {
		return nil
	}

	r.Duration.Set(run.Duration.Seconds())
	if run.Succeeded {
		r.Success.Set(1)
	} else {
		r.Success.Set(0)
	}
	r.Processes.Set(float64(run.Processes))

	pusher := push.New(r.url, JobName).
		Grouping("project", run.Project).
		Grouping("command", string(run.Command)).
		Collector(r.Duration).
		Collector(r.Success).
		Collector(r.Processes)
	if r.client != nil {
		pusher = pusher.Client(r.client)
	}
	return pusher.Push()
}
