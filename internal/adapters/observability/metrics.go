package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trustharvest", Name: "pages_fetched_total", Help: "Listing-page fetches."},
		[]string{"mode", "result"}, // mode: static|dynamic; result: ok|no_such_page|error
	)
	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trustharvest", Name: "fetch_duration_seconds",
			Help:    "Listing-page fetch duration seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)
	ReviewsHarvested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trustharvest", Name: "reviews_harvested_total", Help: "Reviews accumulated per site."},
		[]string{"site"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trustharvest", Name: "http_requests_total", Help: "API HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trustharvest", Name: "http_request_duration_seconds",
			Help:    "API HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "trustharvest", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"},
	)
)

// Serve exposes /metrics on METRICS_ADDR when set; no-op otherwise.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(PagesFetched, FetchLatency, ReviewsHarvested, HTTPRequests, HTTPLatency, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveFetch(mode, result string, dur time.Duration) {
	PagesFetched.WithLabelValues(mode, result).Inc()
	FetchLatency.WithLabelValues(mode).Observe(dur.Seconds())
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
