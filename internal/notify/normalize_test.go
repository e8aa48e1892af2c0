package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/notification-center/internal/model"
)

func TestSortNewestFirst(t *testing.T) {
	t.Parallel()

	at := func(id, ts string) model.Notification {
		return model.Notification{ID: id, CreatedAt: model.ParseTimestamp(ts)}
	}

	tests := []struct {
		name string
		feed []model.Notification
		want []string
	}{
		{
			name: "ordinary dates",
			feed: []model.Notification{at("a", "2024-01-01"), at("b", "2024-03-01"), at("c", "2024-02-01")},
			want: []string{"b", "c", "a"},
		},
		{
			name: "years outside the nanosecond range",
			feed: []model.Notification{at("recent", "2026-01-01"), at("far", "2300-01-01"), at("ancient", "1500-01-01")},
			want: []string{"far", "recent", "ancient"},
		},
		{
			name: "zero time sorts after epoch",
			feed: []model.Notification{at("zero", "0001-01-01"), at("epoch", ""), at("now", "2024-06-01")},
			want: []string{"now", "epoch", "zero"},
		},
		{
			name: "ties keep input order",
			feed: []model.Notification{at("x", "2024-01-01"), at("y", "2024-01-01"), at("z", "2024-01-01")},
			want: []string{"x", "y", "z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			feed := append([]model.Notification(nil), tt.feed...)
			sortNewestFirst(feed)
			assert.Equal(t, tt.want, ids(feed))
			assertNewestFirst(t, feed)
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	feed := make([]model.Notification, 5)
	for i := range feed {
		feed[i].CreatedAt = time.Unix(int64(i), 0)
	}
	assert.Len(t, truncate(feed, 3), 3)
	assert.Len(t, truncate(feed, 10), 5)
	assert.Len(t, truncate(feed, 0), 5)
}
