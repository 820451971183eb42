// Package metrics exports rendering telemetry to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	carousel "github.com/alnah/go-carousel"
)

const namespace = "carousel"

// Status label values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Compile-time interface check.
var _ carousel.Recorder = (*Recorder)(nil)

// Recorder implements carousel.Recorder on its own Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	launches      *prometheus.CounterVec
	pages         *prometheus.CounterVec
	pageAttempts  prometheus.Histogram
	pageDuration  prometheus.Histogram
	batchDuration *prometheus.HistogramVec
	tabsOpen      prometheus.Gauge
}

// New creates a Recorder with the carousel metrics plus Go runtime and
// process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "browser_launches_total",
				Help:      "Total number of browser launches",
			},
			[]string{"engine", "status"}, // status: success, error
		),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_total",
				Help:      "Total number of slides rendered, after retries",
			},
			[]string{"status"},
		),
		pageAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "page_attempts",
				Help:      "Attempts needed per slide",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
		),
		pageDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "page_duration_seconds",
				Help:      "Duration of one slide render including retries, in seconds",
				Buckets:   []float64{.25, .5, 1, 2, 3, 5, 10, 30, 60},
			},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Duration of a whole render request, in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"status"},
		),
		tabsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tabs_open",
				Help:      "Number of browser tabs currently open",
			},
		),
	}

	r.registry.MustRegister(
		r.launches, r.pages, r.pageAttempts, r.pageDuration, r.batchDuration, r.tabsOpen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (r *Recorder) BrowserLaunched(engine string, err error) {
	r.launches.WithLabelValues(engine, status(err)).Inc()
}

func (r *Recorder) TabOpened() { r.tabsOpen.Inc() }

func (r *Recorder) TabClosed() { r.tabsOpen.Dec() }

func (r *Recorder) PageRendered(attempts int, d time.Duration, err error) {
	r.pages.WithLabelValues(status(err)).Inc()
	r.pageAttempts.Observe(float64(attempts))
	r.pageDuration.Observe(d.Seconds())
}

func (r *Recorder) BatchRendered(_ int, d time.Duration, err error) {
	r.batchDuration.WithLabelValues(status(err)).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}
