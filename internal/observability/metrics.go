// Package observability exposes Prometheus metrics for imports and
// summary computation.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitness_wrapped"

// Cache label values for SummariesComputed
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	summariesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "summary",
		Name:      "summaries_total",
		Help:      "Number of year summaries served, by cache outcome.",
	}, []string{"cache"})

	droppedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "summary",
		Name:      "records_dropped_total",
		Help:      "Number of input records dropped or altered during normalization, by diagnostic kind.",
	}, []string{"kind"})

	computeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "summary",
		Name:      "compute_duration_seconds",
		Help:      "Time spent computing one year summary.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	filesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "files_total",
		Help:      "Number of files imported, by format.",
	}, []string{"format"})

	importErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "errors_total",
		Help:      "Number of import failures, by format. Row-level failures count once per row.",
	}, []string{"format"})

	publishErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "publish",
		Name:      "errors_total",
		Help:      "Number of summary events that could not be published.",
	})
)

func init() {
	prometheus.MustRegister(
		summariesCounter,
		droppedCounter,
		computeDuration,
		filesCounter,
		importErrorCounter,
		publishErrorCounter,
	)
}

// RecordSummary counts a served summary. cache is CacheHit or CacheMiss.
func RecordSummary(cache string) {
	summariesCounter.WithLabelValues(cache).Inc()
}

// RecordComputeDuration observes the time one computation took
func RecordComputeDuration(d time.Duration) {
	computeDuration.Observe(d.Seconds())
}

// RecordDropped counts n diagnostics of kind
func RecordDropped(kind string, n int) {
	if n <= 0 {
		return
	}
	droppedCounter.WithLabelValues(kind).Add(float64(n))
}

// RecordFileImported counts one imported file
func RecordFileImported(format string) {
	filesCounter.WithLabelValues(format).Inc()
}

// RecordImportErrors counts n import failures for format
func RecordImportErrors(format string, n int) {
	if n <= 0 {
		return
	}
	importErrorCounter.WithLabelValues(format).Add(float64(n))
}

// RecordPublishError counts a failed summary publication
func RecordPublishError() {
	publishErrorCounter.Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
