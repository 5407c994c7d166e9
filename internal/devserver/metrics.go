package devserver

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	submissions *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homeplay_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "homeplay_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homeplay_submissions_total",
				Help: "Submit attempts by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.submissions)
	return m
}

func (m *metrics) observeRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Submission results.
const (
	resultCreated   = "created"
	resultDuplicate = "duplicate"
	resultInvalid   = "invalid"
	resultError     = "error"
)

func (m *metrics) submission(result string) {
	m.submissions.WithLabelValues(result).Inc()
}
