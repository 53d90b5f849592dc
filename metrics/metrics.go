// Package metrics exposes Prometheus counters for scrape submissions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/models"
)

var (
	ScrapeSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapedesk_submissions_total",
			Help: "Scrape submissions that reached the scraping service, by page type and outcome.",
		},
		[]string{"page_type", "outcome"},
	)
	ScrapeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrapedesk_scrape_duration_seconds",
			Help:    "Time from issuing a scrape request to rendering its result.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"page_type"},
	)
	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapedesk_rejections_total",
			Help: "Submissions stopped before the network call, by reason.",
		},
		[]string{"reason"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scrapedesk_sessions",
			Help: "Number of live page sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(ScrapeSubmissions)
	prometheus.MustRegister(ScrapeDuration)
	prometheus.MustRegister(Rejections)
	prometheus.MustRegister(ActiveSessions)
}

// Observe is a controller.Observer that records completed submissions.
func Observe(pageType models.PageType, outcome controller.Outcome, elapsed time.Duration) {
	pt := string(pageType)
	if !pageType.Known() {
		pt = "unknown"
	}
	ScrapeSubmissions.WithLabelValues(pt, string(outcome)).Inc()
	ScrapeDuration.WithLabelValues(pt).Observe(elapsed.Seconds())
}

// SetSessions reports the number of live page sessions. It is meant to be
// registered with cache.WithSizeObserver.
func SetSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// Reject records a submission stopped by a precondition.
func Reject(outcome controller.Outcome) {
	Rejections.WithLabelValues(string(outcome)).Inc()
}
