package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route pattern, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unisoruyor_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration records request latency by route pattern and method.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unisoruyor_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// RateLimitedTotal counts rejected submissions by kind (question, answer, reply, login).
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unisoruyor_rate_limited_total",
		Help: "Total number of requests rejected by a cooldown or attempt limit",
	}, []string{"kind"})

	// ProfanityRejectionsTotal counts submissions rejected by the profanity filter.
	ProfanityRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unisoruyor_profanity_rejections_total",
		Help: "Total number of submissions rejected by the profanity filter",
	}, []string{"field", "category"})

	// NotificationsTotal counts notification dispatch attempts by type and result.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unisoruyor_notifications_total",
		Help: "Total number of notifications dispatched",
	}, []string{"type", "result"})

	// UploadBytesTotal sums the size of stored attachments.
	UploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unisoruyor_upload_bytes_total",
		Help: "Total bytes of uploaded attachments",
	})

	// CacheRequestsTotal counts cache lookups by cache name and outcome.
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unisoruyor_cache_requests_total",
		Help: "Total cache lookups by outcome",
	}, []string{"cache", "outcome"})

	// RedisErrorsTotal counts failed Redis commands by command name.
	RedisErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unisoruyor_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// Metrics is chi middleware recording request counts and latency per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
