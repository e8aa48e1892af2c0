package inbox

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
)

type markCall struct {
	id     string
	source model.Source
	member string
}

type fakeService struct {
	feed        []model.Notification
	unread      int
	listOpts    []notify.ListOptions
	byType      []model.Category
	marks       []markCall
	markAll     int
	markResult  bool
	invalidated []string
}

func (f *fakeService) ListNotifications(_ context.Context, _ string, opts notify.ListOptions) []model.Notification {
	f.listOpts = append(f.listOpts, opts)
	return f.feed
}

func (f *fakeService) ListNotificationsByType(_ context.Context, _ string, c model.Category, _ int) []model.Notification {
	f.byType = append(f.byType, c)
	var out []model.Notification
	for _, n := range f.feed {
		if n.Category == c {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeService) UnreadCount(context.Context, string) int { return f.unread }

func (f *fakeService) MarkAsRead(_ context.Context, id string, source model.Source, member string) bool {
	f.marks = append(f.marks, markCall{id: id, source: source, member: member})
	return f.markResult
}

func (f *fakeService) MarkAllAsRead(context.Context, string) bool {
	f.markAll++
	return f.markResult
}

func (f *fakeService) InvalidateMember(_ context.Context, member string) {
	f.invalidated = append(f.invalidated, member)
}

func sampleFeed() []model.Notification {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Notification{
		{ID: "g1", Title: "Maintenance", Category: model.CategoryMaintenance, Source: model.SourceGlobal, CreatedAt: now},
		{ID: "t1", Title: "Paid", Category: model.CategoryPayment, Source: model.SourceTransaction, CreatedAt: now.Add(-time.Hour)},
	}
}

func newInbox(svc *fakeService) Model {
	return New(svc, keys.DefaultKeyMap(), "m1", 10, 80, 20)
}

// load runs cmd and feeds its message back into m.
func load(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func TestInboxLoad(t *testing.T) {
	t.Parallel()

	svc := &fakeService{feed: sampleFeed(), unread: 3}
	m := load(t, newInbox(svc), newInbox(svc).Init())

	assert.Len(t, m.list.Items(), 2)
	assert.Equal(t, 3, m.Unread())
	require.Len(t, svc.listOpts, 1)
	assert.Equal(t, 10, svc.listOpts[0].Limit)
	assert.False(t, svc.listOpts[0].ForceRefresh)
	assert.Contains(t, m.View(), "filter: all")
}

func TestInboxMarkRead(t *testing.T) {
	t.Parallel()

	svc := &fakeService{feed: sampleFeed(), markResult: true}
	m := load(t, newInbox(svc), newInbox(svc).Init())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, MarkedMsg{OK: true}, msg)
	require.Len(t, svc.marks, 1)
	assert.Equal(t, markCall{id: "g1", source: model.SourceGlobal, member: "m1"}, svc.marks[0])

	_, cmd = m.Update(msg)
	require.NotNil(t, cmd)
	cmd()
	assert.False(t, svc.listOpts[len(svc.listOpts)-1].ForceRefresh)
}

func TestInboxMarkAllInvalidatesMemberCache(t *testing.T) {
	t.Parallel()

	svc := &fakeService{feed: sampleFeed(), markResult: true}
	m := load(t, newInbox(svc), newInbox(svc).Init())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'M'}})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, MarkedMsg{All: true, OK: true}, msg)
	assert.Equal(t, 1, svc.markAll)
	assert.Equal(t, []string{"m1"}, svc.invalidated)

	m, cmd = m.Update(msg)
	require.NotNil(t, cmd)
	cmd()
	assert.False(t, svc.listOpts[len(svc.listOpts)-1].ForceRefresh)
	assert.Equal(t, "all notifications marked read", m.Status())

	svc.markResult = false
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'M'}})
	require.NotNil(t, cmd)
	assert.Equal(t, MarkedMsg{All: true, OK: false}, cmd())
	assert.Len(t, svc.invalidated, 1)
}

func TestInboxCycleCategory(t *testing.T) {
	t.Parallel()

	svc := &fakeService{feed: sampleFeed()}
	m := load(t, newInbox(svc), newInbox(svc).Init())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.Categories()[0], m.Category())
	m = load(t, m, cmd)
	assert.Equal(t, []model.Category{model.Categories()[0]}, svc.byType)
	assert.Contains(t, m.View(), m.FilterLabel())

	// A late result for the unfiltered feed is dropped.
	m, _ = m.Update(LoadedMsg{Category: "", Notifications: sampleFeed(), Unread: 9})
	assert.NotEqual(t, 9, m.Unread())

	// Poller feeds do not override an active filter.
	assert.Nil(t, m.SetFeed(sampleFeed(), 4))
	assert.Equal(t, 4, m.Unread())
}

func TestRelativeTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{at: now.Add(-10 * time.Second), want: "just now"},
		{at: now.Add(-5 * time.Minute), want: "5m ago"},
		{at: now.Add(-3 * time.Hour), want: "3h ago"},
		{at: now.Add(-2 * 24 * time.Hour), want: "2d ago"},
		{at: now.Add(-21 * 24 * time.Hour), want: "3w ago"},
		{at: model.Epoch, want: ""},
		{at: time.Time{}, want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTime(tt.at, now))
	}
}
