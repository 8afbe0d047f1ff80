// Package metrics owns the Prometheus collectors of the server.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. Each instance has its own registry so tests
// can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RPCs        *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec
	RateLimited *prometheus.CounterVec
	Swipes      *prometheus.CounterVec
	Matches     prometheus.Counter
	CacheHits   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RPCs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviematch",
			Name:      "rpc_requests_total",
			Help:      "Unary RPCs handled, by method and status code.",
		}, []string{"method", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "moviematch",
			Name:      "rpc_duration_seconds",
			Help:      "Unary RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviematch",
			Name:      "rpc_rate_limited_total",
			Help:      "Calls rejected by the rate limiter.",
		}, []string{"method"}),
		Swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviematch",
			Name:      "swipes_total",
			Help:      "Swipes recorded, by kind.",
		}, []string{"kind"}),
		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moviematch",
			Name:      "matches_created_total",
			Help:      "Matches created by swipes or couple joins.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviematch",
			Name:      "match_count_cache_total",
			Help:      "Match count lookups, by result (hit or miss).",
		}, []string{"result"}),
	}

	m.Registry.MustRegister(
		m.RPCs, m.RPCDuration, m.RateLimited, m.Swipes, m.Matches, m.CacheHits,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(method, code string, took time.Duration) {
	if m == nil {
		return
	}
	m.RPCs.WithLabelValues(method, code).Inc()
	m.RPCDuration.WithLabelValues(method).Observe(took.Seconds())
}

func (m *Metrics) SwipeRecorded(kind string) {
	if m == nil {
		return
	}
	m.Swipes.WithLabelValues(kind).Inc()
}

func (m *Metrics) MatchesCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Matches.Add(float64(n))
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheHits.WithLabelValues(result).Inc()
}

func (m *Metrics) Limited(method string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(method).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
