// internal/common/metrics/metrics.go
// Prometheus instrumentation for the HTTP layer and domain events

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instaclone_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "instaclone_http_request_duration_seconds",
			Help: "HTTP request latency",
		},
		[]string{"method", "route"},
	)

	postsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "instaclone_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	commentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "instaclone_comments_created_total",
			Help: "Total number of comments created",
		},
	)

	likeTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instaclone_like_toggles_total",
			Help: "Total number of like toggles",
		},
		[]string{"target", "outcome"},
	)
)

// Handler exposes the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per route
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := routeTemplate(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// routeTemplate returns the mux route pattern so that /posts/42/ and
// /posts/43/ share one label value
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// RecordPostCreated increments the post creation counter
func RecordPostCreated() {
	postsCreatedTotal.Inc()
}

// RecordCommentCreated increments the comment creation counter
func RecordCommentCreated() {
	commentsCreatedTotal.Inc()
}

// RecordLikeToggle records a like toggle by target ("post" or "comment")
// and outcome ("liked" or "unliked")
func RecordLikeToggle(target, outcome string) {
	likeTogglesTotal.WithLabelValues(target, outcome).Inc()
}
