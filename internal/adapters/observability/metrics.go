package observability

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gateway", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gateway", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gateway", Name: "backend_requests_total", Help: "Outbound backend requests."},
		[]string{"service", "endpoint", "status"}, // status "error": no answer received
	)
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gateway", Name: "backend_request_duration_seconds",
			Help:    "Outbound backend request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	IdempotencyEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gateway", Name: "idempotency_events_total", Help: "Idempotency key events."},
		[]string{"event"}, // event: begin|conflict|complete|release|error
	)
)

// Serve exposes reg on a side listener. Empty addr disables it and returns a
// nil server. The returned server has Addr set to the bound address.
func Serve(addr string, reg *prometheus.Registry) (*http.Server, error) {
	if addr == "" {
		return nil, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv, nil
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, BackendRequests, BackendLatency, IdempotencyEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records one backend call. status 0 means the call never
// got an answer; its latency is not observed.
func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	if status == 0 {
		BackendRequests.WithLabelValues(service, endpoint, "error").Inc()
		return
	}
	BackendRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	BackendLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveIdempotency(event string) {
	IdempotencyEvents.WithLabelValues(event).Inc()
}
