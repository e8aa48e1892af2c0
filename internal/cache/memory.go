// Package cache provides whole-feed caches for the notification service.
// Entries are keyed by (member, limit) and never expire on their own; they
// are dropped by explicit invalidation.
package cache

import (
	"context"
	"sync"

	"github.com/nhle/notification-center/internal/model"
)

type feedKey struct {
	memberID string
	limit    int
}

// Memory is an in-process feed cache. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[feedKey][]model.Notification
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[feedKey][]model.Notification)}
}

// Get returns a copy of the cached feed for (memberID, limit).
func (m *Memory) Get(_ context.Context, memberID string, limit int) ([]model.Notification, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	feed, ok := m.entries[feedKey{memberID, limit}]
	if !ok {
		return nil, false, nil
	}
	return cloneFeed(feed), true, nil
}

// Set stores a copy of feed under (memberID, limit).
func (m *Memory) Set(_ context.Context, memberID string, limit int, feed []model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[feedKey{memberID, limit}] = cloneFeed(feed)
	return nil
}

// InvalidateMember drops every cached feed of memberID.
func (m *Memory) InvalidateMember(_ context.Context, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.entries {
		if k.memberID == memberID {
			delete(m.entries, k)
		}
	}
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.entries)
	return nil
}

// Len reports the number of cached feeds.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close releases nothing; it exists to satisfy the cache contract.
func (m *Memory) Close() error { return nil }

func cloneFeed(feed []model.Notification) []model.Notification {
	if feed == nil {
		return []model.Notification{}
	}
	out := make([]model.Notification, len(feed))
	copy(out, feed)
	return out
}
