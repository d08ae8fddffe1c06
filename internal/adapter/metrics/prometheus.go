package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ secondary.MetricsRecorder = (*Recorder)(nil)

const namespace = "codeprep"

// Recorder exports execution, evaluation and HTTP metrics to Prometheus.
type Recorder struct {
	registry *prometheus.Registry

	submissionsTotal   *prometheus.CounterVec
	pollAttempts       *prometheus.HistogramVec
	pollDuration       *prometheus.HistogramVec
	testCasesTotal     *prometheus.CounterVec
	extractionsTotal   *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
}

// NewRecorder registers all collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "judge",
				Name:      "submissions_total",
				Help:      "Submissions sent to the judge by outcome.",
			},
			[]string{"outcome"},
		),
		pollAttempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "judge",
				Name:      "poll_attempts",
				Help:      "Status checks needed before a submission finished.",
				Buckets:   []float64{1, 2, 3, 5, 10, 20, 30},
			},
			[]string{"status"},
		),
		pollDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "judge",
				Name:      "poll_duration_seconds",
				Help:      "Time from submission to terminal status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		testCasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "execution",
				Name:      "test_cases_total",
				Help:      "Graded test cases by result.",
			},
			[]string{"result"},
		),
		extractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evaluation",
				Name:      "extractions_total",
				Help:      "Score extractions by tier and grade.",
			},
			[]string{"tier", "grade"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		httpRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.submissionsTotal,
		r.pollAttempts,
		r.pollDuration,
		r.testCasesTotal,
		r.extractionsTotal,
		r.httpRequestsTotal,
		r.httpRequestSeconds,
	)
	return r
}

func (r *Recorder) ObserveSubmission(outcome string) {
	r.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObservePolling(status domain.ExecutionStatus, attempts int, elapsed time.Duration) {
	r.pollAttempts.WithLabelValues(string(status)).Observe(float64(attempts))
	r.pollDuration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveTestCase(pass bool) {
	result := "failed"
	if pass {
		result = "passed"
	}
	r.testCasesTotal.WithLabelValues(result).Inc()
}

func (r *Recorder) ObserveExtraction(tier string, grade domain.Grade) {
	r.extractionsTotal.WithLabelValues(tier, string(grade)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by route template.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		route := "unmatched"
		if current := mux.CurrentRoute(req); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		r.httpRequestsTotal.WithLabelValues(route, req.Method, strconv.Itoa(rec.status)).Inc()
		r.httpRequestSeconds.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}
