package inbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
)

// Item wraps a model.Notification for a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification title.
func (i Item) Title() string { return i.Notification.Title }

// Description returns a short summary line.
func (i Item) Description() string {
	parts := []string{
		model.Describe(i.Notification.Category).Name,
		string(i.Notification.Source),
	}
	if rel := relativeTime(i.Notification.CreatedAt, time.Now()); rel != "" {
		parts = append(parts, rel)
	}
	return strings.Join(parts, " | ")
}

// itemDelegate renders one notification per line.
type itemDelegate struct {
	now func() time.Time
}

func (d itemDelegate) Height() int { return 1 }

func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single list item line.
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification
	desc := model.Describe(n.Category)

	marker := "●"
	if n.IsRead {
		marker = " "
	}

	src := string(n.Source)
	srcBadge := theme.SourceLabelStyle(src).Render(strings.ToUpper(src)[:min(3, len(src))])
	category := theme.CategoryStyle(desc.Color).Render(desc.Name)
	when := theme.HelpStyle.Render(relativeTime(n.CreatedAt, d.now()))

	line := fmt.Sprintf("%s %s %s %s  %s", marker, srcBadge, category, n.Title, when)
	if n.IsRead {
		line = theme.ReadItemStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly age of t relative to now.
func relativeTime(t, now time.Time) string {
	if t.IsZero() || t.Equal(model.Epoch) {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
