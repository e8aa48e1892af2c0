package notify

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/model"
)

// normalizeTransaction converts a transaction record into the unified shape.
// The read flag is the stored one, false when absent.
func (s *Service) normalizeTransaction(n model.TransactionNotification, memberID string) model.Notification {
	created := model.ParseTimestamp(n.CreatedAt)
	return model.Notification{
		ID:             n.ID,
		Title:          n.Title,
		Body:           n.Body,
		Category:       n.Category,
		Payload:        s.decodePayload(n.ID, n.Category, n.Payload),
		IsRead:         n.IsRead != nil && *n.IsRead,
		CreatedAt:      created,
		UpdatedAt:      updatedOrCreated(n.UpdatedAt, created),
		Source:         model.SourceTransaction,
		TransactionRef: n.TransactionID,
		MemberID:       memberID,
	}
}

// normalizeGlobal converts a broadcast joined with the member's read flag.
// The category is kept as stored, even when empty.
func (s *Service) normalizeGlobal(v model.GlobalNotificationView, memberID string) model.Notification {
	created := model.ParseTimestamp(v.CreatedAt)
	return model.Notification{
		ID:        v.ID,
		Title:     v.Title,
		Body:      v.Body,
		Category:  v.Category,
		Payload:   s.decodePayload(v.ID, v.Category, v.Payload),
		IsRead:    v.IsRead != nil && *v.IsRead,
		CreatedAt: created,
		UpdatedAt: updatedOrCreated(v.UpdatedAt, created),
		Source:    model.SourceGlobal,
		GlobalRef: v.ID,
		MemberID:  memberID,
	}
}

func (s *Service) decodePayload(id string, category model.Category, raw model.RawPayload) model.Payload {
	p, err := model.DecodePayload(category, raw)
	if err != nil {
		s.log.Warn("dropping malformed payload",
			zap.String("notification_id", id), zap.Error(err))
		return nil
	}
	return p
}

func updatedOrCreated(updated *string, created time.Time) time.Time {
	if updated == nil || *updated == "" {
		return created
	}
	return model.ParseTimestamp(*updated)
}

// sortNewestFirst orders feed by CreatedAt descending, keeping the input
// order among equal timestamps.
func sortNewestFirst(feed []model.Notification) {
	slices.SortStableFunc(feed, func(a, b model.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func truncate(feed []model.Notification, limit int) []model.Notification {
	if limit > 0 && len(feed) > limit {
		return feed[:limit]
	}
	return feed
}
