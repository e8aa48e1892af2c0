package sync

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
)

type fakeFeed struct {
	mu     gosync.Mutex
	feed   []model.Notification
	unread int
	opts   []notify.ListOptions
}

func (f *fakeFeed) ListNotifications(_ context.Context, _ string, opts notify.ListOptions) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)
	return append([]model.Notification(nil), f.feed...)
}

func (f *fakeFeed) UnreadCount(context.Context, string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

func (f *fakeFeed) add(n model.Notification, unread int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feed = append(f.feed, n)
	f.unread = unread
}

func receive(t *testing.T, p *Poller) FeedMsg {
	t.Helper()
	done := make(chan FeedMsg, 1)
	go func() { done <- p.WaitForNextResult()().(FeedMsg) }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a refresh")
		return FeedMsg{}
	}
}

func TestPollerRefresh(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{}
	feed.add(model.Notification{ID: "1", Source: model.SourceGlobal}, 1)

	p := New(feed, Options{MemberID: "m1", PageSize: 10, Interval: time.Hour})
	start := p.Start()
	require.NotNil(t, start)
	t.Cleanup(p.Stop)

	first := start().(FeedMsg)
	assert.Len(t, first.Notifications, 1)
	assert.Equal(t, 1, first.Unread)
	assert.Zero(t, first.NewCount)

	// Same id from the other source counts as new.
	feed.add(model.Notification{ID: "1", Source: model.SourceTransaction}, 2)
	p.Refresh()

	second := receive(t, p)
	assert.Len(t, second.Notifications, 2)
	assert.Equal(t, 2, second.Unread)
	assert.Equal(t, 1, second.NewCount)
	assert.Equal(t, SyncIdle, p.Status().State)
	assert.False(t, p.Status().LastSync.IsZero())

	feed.mu.Lock()
	defer feed.mu.Unlock()
	for _, o := range feed.opts {
		assert.True(t, o.ForceRefresh)
		assert.Equal(t, 10, o.Limit)
	}
}

func TestPollerStartTwice(t *testing.T) {
	t.Parallel()

	p := New(&fakeFeed{}, Options{Interval: time.Hour})
	require.NotNil(t, p.Start())
	assert.Nil(t, p.Start())
	p.Stop()
	p.Stop()
}
