package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveStrategy("list_global", "rpc", false)
	c.ObserveStrategy("list_global", "join", true)
	c.ObserveStrategy("list_global", "join", true)
	c.ObserveCache(CacheHit)
	c.ObserveCache(CacheMiss)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Strategy.WithLabelValues("list_global", "rpc", OutcomeFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Strategy.WithLabelValues("list_global", "join", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheLookups.WithLabelValues(CacheHit)))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	t.Parallel()

	var c *Collectors
	assert.NotPanics(t, func() {
		c.ObserveStrategy("op", "s", true)
		c.ObserveCache(CacheMiss)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := New(reg)
	c.ObserveCache(CacheHit)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "notification_cache_lookups_total"))
}

func TestServeExposesServiceCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := New(reg)
	c.ObserveStrategy("list_transactions", "rpc", true)
	c.ObserveCache(CacheMiss)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, reg) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `notification_strategy_total{operation="list_transactions",outcome="success",strategy="rpc"} 1`)
	assert.Contains(t, string(body), `notification_cache_lookups_total{result="miss"} 1`)

	cancel()
	require.NoError(t, <-done)
}
