// Package notify aggregates transaction and broadcast notifications into a
// single per-member feed and tracks read state.
//
// Every public operation is total: backend failures are logged and turned
// into a safe default (empty feed, zero count, false) instead of being
// returned. Callers therefore cannot tell an empty result from a suppressed
// failure.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/cache"
	"github.com/nhle/notification-center/internal/metrics"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

// Default page sizes.
const (
	DefaultListLimit   = 50
	DefaultByTypeLimit = 20
)

// Cache stores whole feeds keyed by (member, limit). Implementations are
// advisory; a failed lookup is treated as a miss.
type Cache interface {
	Get(ctx context.Context, memberID string, limit int) ([]model.Notification, bool, error)
	Set(ctx context.Context, memberID string, limit int, feed []model.Notification) error
	InvalidateMember(ctx context.Context, memberID string) error
	Clear(ctx context.Context) error
	Close() error
}

// Service is the notification aggregator.
type Service struct {
	store   store.Store
	cache   Cache
	log     *zap.Logger
	metrics *metrics.Collectors
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache replaces the default in-memory cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *metrics.Collectors) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the time source for timestamps written by the service.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	return s
}

// Close releases the cache.
func (s *Service) Close() error {
	return s.cache.Close()
}

// TypeDescriptor returns the display and routing attributes of category.
func (s *Service) TypeDescriptor(category model.Category) model.TypeDescriptor {
	return model.Describe(category)
}

// ClearCache drops every cached feed.
func (s *Service) ClearCache(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn("clearing feed cache", zap.Error(err))
	}
}

// InvalidateMember drops the cached feeds of one member.
func (s *Service) InvalidateMember(ctx context.Context, memberID string) {
	if err := s.cache.InvalidateMember(ctx, memberID); err != nil {
		s.log.Warn("invalidating feed cache",
			zap.String("member_id", memberID), zap.Error(err))
	}
}

func (s *Service) cachedFeed(ctx context.Context, memberID string, limit int) ([]model.Notification, bool) {
	feed, ok, err := s.cache.Get(ctx, memberID, limit)
	switch {
	case err != nil:
		s.metrics.ObserveCache(metrics.CacheError)
		s.log.Warn("reading feed cache",
			zap.String("member_id", memberID), zap.Error(err))
		return nil, false
	case !ok:
		s.metrics.ObserveCache(metrics.CacheMiss)
		return nil, false
	default:
		s.metrics.ObserveCache(metrics.CacheHit)
		return feed, true
	}
}

func (s *Service) storeFeed(ctx context.Context, memberID string, limit int, feed []model.Notification) {
	if err := s.cache.Set(ctx, memberID, limit, feed); err != nil {
		s.log.Warn("writing feed cache",
			zap.String("member_id", memberID), zap.Error(err))
	}
}
