package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration records request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conduit_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// FavoriteToggles counts favorite/unfavorite calls and whether they changed anything.
	FavoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_favorite_toggles_total",
		Help: "Favorite and unfavorite calls by outcome",
	}, []string{"action", "changed"})

	// TagRegistrations counts tag inserts by outcome: created, existing or error.
	TagRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_tag_registrations_total",
		Help: "Tag registrations by outcome",
	}, []string{"outcome"})

	// FeedCacheReads counts feed reads by result: hit, miss, bypass or error.
	FeedCacheReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_feed_cache_reads_total",
		Help: "Feed reads by cache result",
	}, []string{"result"})
)

// RecordToggle records one favorite or unfavorite call.
func RecordToggle(action string, changed bool) {
	FavoriteToggles.WithLabelValues(action, strconv.FormatBool(changed)).Inc()
}

// Middleware records request count and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
