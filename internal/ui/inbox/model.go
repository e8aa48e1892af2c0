// Package inbox is the notification list view.
package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
	"github.com/nhle/notification-center/internal/theme"
)

// Service is the part of the notification service the inbox drives.
type Service interface {
	ListNotifications(ctx context.Context, memberID string, opts notify.ListOptions) []model.Notification
	ListNotificationsByType(ctx context.Context, memberID string, category model.Category, limit int) []model.Notification
	UnreadCount(ctx context.Context, memberID string) int
	MarkAsRead(ctx context.Context, notificationID string, source model.Source, memberID string) bool
	MarkAllAsRead(ctx context.Context, memberID string) bool
	InvalidateMember(ctx context.Context, memberID string)
}

// requestTimeout bounds each service call issued from the UI.
const requestTimeout = 30 * time.Second

// LoadedMsg carries a freshly loaded feed for the given filter.
type LoadedMsg struct {
	Category      model.Category
	Notifications []model.Notification
	Unread        int
}

// MarkedMsg reports the outcome of a mark-as-read action.
type MarkedMsg struct {
	All bool
	OK  bool
}

// Model is the inbox view component.
type Model struct {
	list     list.Model
	svc      Service
	keys     *keys.KeyMap
	memberID string
	pageSize int

	// filters cycles through "" (everything) and each registered category.
	filters   []model.Category
	filterIdx int

	unread int
	status string
	width  int
	height int
}

// New creates an inbox over svc for memberID.
func New(svc Service, k *keys.KeyMap, memberID string, pageSize, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{now: time.Now}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	if pageSize <= 0 {
		pageSize = notify.DefaultListLimit
	}

	return Model{
		list:     l,
		svc:      svc,
		keys:     k,
		memberID: memberID,
		pageSize: pageSize,
		filters:  append([]model.Category{""}, model.Categories()...),
		width:    width,
		height:   height,
	}
}

// Init loads the unfiltered feed.
func (m Model) Init() tea.Cmd {
	return m.Load(false)
}

// Category returns the active category filter; empty means all.
func (m Model) Category() model.Category {
	return m.filters[m.filterIdx]
}

// Unread returns the last known unread count.
func (m Model) Unread() int {
	return m.unread
}

// Status returns the last transient status message.
func (m Model) Status() string {
	return m.status
}

// Update handles messages for the inbox.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Category != m.Category() {
			// A response for a filter the user has already moved past.
			return m, nil
		}
		m.unread = msg.Unread
		return m, m.setItems(msg.Notifications)

	case MarkedMsg:
		switch {
		case !msg.OK:
			m.status = "could not mark as read"
		case msg.All:
			m.status = "all notifications marked read"
		default:
			m.status = ""
		}
		return m, m.Load(false)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetFeed replaces the unfiltered feed with a poller result. It is ignored
// while a category filter is active.
func (m *Model) SetFeed(feed []model.Notification, unread int) tea.Cmd {
	m.unread = unread
	if m.Category() != "" {
		return nil
	}
	return m.setItems(feed)
}

func (m *Model) setItems(feed []model.Notification) tea.Cmd {
	items := make([]list.Item, len(feed))
	for i, n := range feed {
		items[i] = Item{Notification: n}
	}
	return m.list.SetItems(items)
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(Item)
		if !ok || item.Notification.IsRead {
			return m, nil
		}
		return m, m.markRead(item.Notification)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.CycleCategory):
		m.filterIdx = (m.filterIdx + 1) % len(m.filters)
		m.list.ResetSelected()
		return m, m.Load(false)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Load returns a command that fetches the feed for the active filter along
// with the unread count.
func (m Model) Load(force bool) tea.Cmd {
	svc, memberID, limit, category := m.svc, m.memberID, m.pageSize, m.Category()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var feed []model.Notification
		if category == "" {
			feed = svc.ListNotifications(ctx, memberID, notify.ListOptions{Limit: limit, ForceRefresh: force})
		} else {
			feed = svc.ListNotificationsByType(ctx, memberID, category, limit)
		}
		return LoadedMsg{
			Category:      category,
			Notifications: feed,
			Unread:        svc.UnreadCount(ctx, memberID),
		}
	}
}

func (m Model) markRead(n model.Notification) tea.Cmd {
	svc, memberID := m.svc, m.memberID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return MarkedMsg{OK: svc.MarkAsRead(ctx, n.ID, n.Source, memberID)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	svc, memberID := m.svc, m.memberID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ok := svc.MarkAllAsRead(ctx, memberID)
		if ok {
			// Mark-all leaves the feed cache untouched.
			svc.InvalidateMember(ctx, memberID)
		}
		return MarkedMsg{All: true, OK: ok}
	}
}

// FilterLabel describes the active category filter.
func (m Model) FilterLabel() string {
	c := m.Category()
	if c == "" {
		return "all"
	}
	return model.Describe(c).Name
}

// View renders the inbox.
func (m Model) View() string {
	filter := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Padding(0, 1).
		Render(fmt.Sprintf("filter: %s", m.FilterLabel()))

	if len(m.list.Items()) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width).
			Height(max(m.height-1, 0)).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.")
		return lipgloss.JoinVertical(lipgloss.Left, filter, empty)
	}

	return lipgloss.JoinVertical(lipgloss.Left, filter, m.list.View())
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-1, 0))
}
