package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loanplanner_requests_total",
	Help: "API requests handled, by endpoint and HTTP status.",
}, []string{"endpoint", "status"})

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "loanplanner_request_duration_seconds",
	Help:    "API request duration, by endpoint.",
	Buckets: prometheus.DefBuckets,
}, []string{"endpoint"})

var cacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "loanplanner_schedule_cache_hits_total",
	Help: "Schedule results served from the cache.",
})

func observeRequest(endpoint string, status int, started time.Time) {
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
