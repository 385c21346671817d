// Package metrics collects and exposes Prometheus metrics for the
// site: request outcomes, page views, and contact-form activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface the HTTP layer and services record
// against. Kept narrow so handlers can take a stub in tests.
type Recorder interface {
	RecordRequest(method, route string, statusCode int, duration time.Duration)
	RecordPageView(page string)
	RecordContactSubmission()
	RecordNotificationFailure()
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	pageViews          *prometheus.CounterVec
	contactSubmissions prometheus.Counter
	notifyFailures     prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldpal_http_requests_total",
			Help: "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldpal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		pageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldpal_page_views_total",
			Help: "Public page views, by page.",
		}, []string{"page"}),
		contactSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldpal_contact_submissions_total",
			Help: "Contact form submissions accepted.",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldpal_notification_failures_total",
			Help: "Contact notification emails that failed to send.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.pageViews,
		c.contactSubmissions,
		c.notifyFailures,
	)

	return c
}

// RecordRequest records one served request.
func (c *Collector) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordPageView records a public page view.
func (c *Collector) RecordPageView(page string) {
	c.pageViews.WithLabelValues(page).Inc()
}

// RecordContactSubmission records an accepted contact submission.
func (c *Collector) RecordContactSubmission() {
	c.contactSubmissions.Inc()
}

// RecordNotificationFailure records a failed notification email.
func (c *Collector) RecordNotificationFailure() {
	c.notifyFailures.Inc()
}

// Handler returns the scrape endpoint handler for the registry.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
