package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/metrics"
)

func TestFirstSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fail := func(name string, err error) strategy[int] {
		return strategy[int]{name: name, run: func(context.Context) (int, error) { return 0, err }}
	}
	ok := func(name string, v int) strategy[int] {
		return strategy[int]{name: name, run: func(context.Context) (int, error) { return v, nil }}
	}

	t.Run("returns first success and skips the rest", func(t *testing.T) {
		t.Parallel()
		m := metrics.New(prometheus.NewRegistry())
		svc := New(nil, WithMetrics(m))

		ran := false
		got, err := firstSuccess(ctx, svc, "op",
			fail("a", errInjected),
			ok("b", 7),
			strategy[int]{name: "c", run: func(context.Context) (int, error) {
				ran = true
				return 9, nil
			}},
		)
		require.NoError(t, err)
		assert.Equal(t, 7, got)
		assert.False(t, ran)
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Strategy.WithLabelValues("op", "a", metrics.OutcomeFailure)))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Strategy.WithLabelValues("op", "b", metrics.OutcomeSuccess)))
	})

	t.Run("joins every failure", func(t *testing.T) {
		t.Parallel()
		svc := New(nil)
		other := errors.New("other")

		got, err := firstSuccess(ctx, svc, "op", fail("a", errInjected), fail("b", other))
		require.Error(t, err)
		assert.Zero(t, got)
		assert.ErrorIs(t, err, errInjected)
		assert.ErrorIs(t, err, other)
	})

	t.Run("no strategies is a failure", func(t *testing.T) {
		t.Parallel()
		_, err := firstSuccess[int](ctx, New(nil), "op")
		assert.Error(t, err)
	})
}
