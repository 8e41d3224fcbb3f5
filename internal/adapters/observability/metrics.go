package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "provider_requests_total", Help: "Outbound provider requests."},
		[]string{"provider", "op", "status"}, // status 0: no response
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "provider_request_duration_seconds",
			Help:    "Outbound provider request duration seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 8, 16},
		},
		[]string{"provider", "op"},
	)
	PollAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "poll_attempts_total", Help: "Job poll attempts by outcome."},
		[]string{"provider", "outcome"}, // outcome: pending|done|error
	)
	PollTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "poll_timeouts_total", Help: "Jobs still pending after the attempt budget."},
		[]string{"provider"},
	)
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "pages_fetched_total", Help: "Continuation pages by outcome."},
		[]string{"provider", "outcome"}, // outcome: ok|error
	)
	WalkStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "page_walk_stops_total", Help: "Why page walks ended."},
		[]string{"provider", "reason"}, // reason: end|total|cap|error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)
)

// Serve starts a dedicated metrics listener when addr is set.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

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
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		PollAttempts, PollTimeouts, PagesFetched, WalkStops, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(provider, op string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(provider, op, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(provider, op).Observe(dur.Seconds())
}

func ObservePoll(provider, outcome string) { // outcome: pending|done|error
	PollAttempts.WithLabelValues(provider, outcome).Inc()
}

func ObservePollTimeout(provider string) {
	PollTimeouts.WithLabelValues(provider).Inc()
}

func ObservePage(provider, outcome string) { // outcome: ok|error
	PagesFetched.WithLabelValues(provider, outcome).Inc()
}

func ObserveWalkStop(provider, reason string) {
	WalkStops.WithLabelValues(provider, reason).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del|error
	CacheEvents.WithLabelValues(cache, event).Inc()
}
