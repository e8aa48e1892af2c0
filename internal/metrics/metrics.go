// Package metrics exposes Prometheus counters for the notification service.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Strategy outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Collectors groups the service counters. A nil *Collectors is valid and
// records nothing.
type Collectors struct {
	Strategy     *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Strategy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_strategy_total",
			Help: "Fallback strategy attempts by operation, strategy and outcome",
		}, []string{"operation", "strategy", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_cache_lookups_total",
			Help: "Feed cache lookups by result",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(c.Strategy, c.CacheLookups)
	}
	return c
}

// ObserveStrategy counts one strategy attempt.
func (c *Collectors) ObserveStrategy(operation, strategy string, ok bool) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	c.Strategy.WithLabelValues(operation, strategy, outcome).Inc()
}

// ObserveCache counts one cache lookup.
func (c *Collectors) ObserveCache(result string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

// Handler returns an http.Handler for Prometheus scraping of gatherer, or
// of the default registry when gatherer is nil.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve exposes gatherer on /metrics of ln until ctx is cancelled.
func Serve(ctx context.Context, ln net.Listener, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
