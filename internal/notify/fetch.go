package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

// ListOptions controls ListNotifications.
type ListOptions struct {
	// Limit caps the feed; zero selects DefaultListLimit.
	Limit int

	// ForceRefresh bypasses the cache lookup. The fresh feed is still
	// cached.
	ForceRefresh bool
}

// ListNotifications returns memberID's merged feed, newest first, at most
// opts.Limit entries. Results are served from the cache unless
// opts.ForceRefresh is set.
func (s *Service) ListNotifications(ctx context.Context, memberID string, opts ListOptions) []model.Notification {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	if !opts.ForceRefresh {
		if feed, ok := s.cachedFeed(ctx, memberID, limit); ok {
			return feed
		}
	}

	txns := s.transactionNotifications(ctx, memberID, limit)
	globals := s.globalNotifications(ctx, memberID)

	feed := make([]model.Notification, 0, len(txns)+len(globals))
	for _, n := range txns {
		feed = append(feed, s.normalizeTransaction(n, memberID))
	}
	for _, v := range globals {
		feed = append(feed, s.normalizeGlobal(v, memberID))
	}
	sortNewestFirst(feed)
	feed = truncate(feed, limit)

	s.storeFeed(ctx, memberID, limit, feed)
	return feed
}

// transactionNotifications fetches the member's transaction notifications
// through the aggregation procedure, falling back to an id lookup followed
// by a filtered query.
func (s *Service) transactionNotifications(ctx context.Context, memberID string, limit int) []model.TransactionNotification {
	out, err := firstSuccess(ctx, s, "list_transaction",
		strategy[[]model.TransactionNotification]{
			name: "rpc",
			run: func(ctx context.Context) ([]model.TransactionNotification, error) {
				return s.store.TransactionNotificationsForMember(ctx, memberID, limit)
			},
		},
		strategy[[]model.TransactionNotification]{
			name: "transaction_ids",
			run: func(ctx context.Context) ([]model.TransactionNotification, error) {
				ids, err := s.store.MemberTransactionIDs(ctx, memberID)
				if err != nil {
					s.log.Warn("looking up member transactions",
						zap.String("member_id", memberID), zap.Error(err))
					return nil, nil
				}
				if len(ids) == 0 {
					return nil, nil
				}
				return s.store.ListTransactionNotifications(ctx, store.TransactionNotificationFilter{
					TransactionIDs: ids,
					Limit:          limit,
				})
			},
		},
	)
	if err != nil {
		s.log.Warn("fetching transaction notifications",
			zap.String("member_id", memberID), zap.Error(err))
		return nil
	}
	return out
}

// globalNotifications fetches every broadcast with the member's read flag,
// trying the aggregation procedure, then the joined query, then two plain
// queries reconciled here.
func (s *Service) globalNotifications(ctx context.Context, memberID string) []model.GlobalNotificationView {
	out, err := firstSuccess(ctx, s, "list_global",
		strategy[[]model.GlobalNotificationView]{
			name: "rpc",
			run: func(ctx context.Context) ([]model.GlobalNotificationView, error) {
				return s.store.GlobalNotificationsWithReadStatus(ctx, memberID)
			},
		},
		strategy[[]model.GlobalNotificationView]{
			name: "join",
			run: func(ctx context.Context) ([]model.GlobalNotificationView, error) {
				return s.store.ListGlobalNotificationsJoined(ctx, memberID, store.GlobalNotificationFilter{})
			},
		},
		strategy[[]model.GlobalNotificationView]{
			name: "reconcile",
			run: func(ctx context.Context) ([]model.GlobalNotificationView, error) {
				return s.reconcileGlobal(ctx, memberID)
			},
		},
	)
	if err != nil {
		s.log.Warn("fetching global notifications",
			zap.String("member_id", memberID), zap.Error(err))
		return nil
	}
	return out
}

// reconcileGlobal joins broadcasts to the member's read-status rows
// client-side. Broadcasts without a row stay unresolved (unread).
func (s *Service) reconcileGlobal(ctx context.Context, memberID string) ([]model.GlobalNotificationView, error) {
	globals, err := s.store.ListGlobalNotifications(ctx, store.GlobalNotificationFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing global notifications: %w", err)
	}
	statuses, err := s.store.ListReadStatuses(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing read statuses: %w", err)
	}

	readByID := make(map[string]bool, len(statuses))
	for _, rs := range statuses {
		readByID[rs.GlobalNotificationID] = rs.IsRead
	}

	out := make([]model.GlobalNotificationView, 0, len(globals))
	for _, g := range globals {
		v := model.GlobalNotificationView{GlobalNotification: g}
		if read, ok := readByID[g.ID]; ok {
			v.IsRead = &read
		}
		out = append(out, v)
	}
	return out, nil
}

// ListNotificationsByType returns up to limit notifications of category,
// newest first. Global categories read the broadcast source; all others
// read transaction notifications filtered by category alone. This path
// never consults or fills the feed cache.
func (s *Service) ListNotificationsByType(
	ctx context.Context,
	memberID string,
	category model.Category,
	limit int,
) []model.Notification {
	if limit <= 0 {
		limit = DefaultByTypeLimit
	}

	var feed []model.Notification
	if model.IsGlobalCategory(category) {
		for _, v := range s.globalByCategory(ctx, memberID, category, limit) {
			feed = append(feed, s.normalizeGlobal(v, memberID))
		}
	} else {
		txns, err := s.store.ListTransactionNotifications(ctx, store.TransactionNotificationFilter{
			Category: &category,
			Limit:    limit,
		})
		if err != nil {
			s.log.Warn("listing transaction notifications by category",
				zap.String("member_id", memberID),
				zap.String("category", string(category)),
				zap.Error(err))
		}
		for _, n := range txns {
			feed = append(feed, s.normalizeTransaction(n, memberID))
		}
	}

	if feed == nil {
		return []model.Notification{}
	}
	sortNewestFirst(feed)
	return truncate(feed, limit)
}

func (s *Service) globalByCategory(
	ctx context.Context,
	memberID string,
	category model.Category,
	limit int,
) []model.GlobalNotificationView {
	out, err := firstSuccess(ctx, s, "list_global_by_type",
		strategy[[]model.GlobalNotificationView]{
			name: "rpc",
			run: func(ctx context.Context) ([]model.GlobalNotificationView, error) {
				all, err := s.store.GlobalNotificationsWithReadStatus(ctx, memberID)
				if err != nil {
					return nil, err
				}
				var matched []model.GlobalNotificationView
				for _, v := range all {
					if v.Category == category {
						matched = append(matched, v)
					}
				}
				return matched, nil
			},
		},
		strategy[[]model.GlobalNotificationView]{
			name: "join",
			run: func(ctx context.Context) ([]model.GlobalNotificationView, error) {
				return s.store.ListGlobalNotificationsJoined(ctx, memberID, store.GlobalNotificationFilter{
					Category: &category,
					Limit:    limit,
				})
			},
		},
	)
	if err != nil {
		s.log.Warn("listing global notifications by category",
			zap.String("member_id", memberID),
			zap.String("category", string(category)),
			zap.Error(err))
		return nil
	}
	return out
}

// UnreadCount returns unread transaction notifications across all members
// plus memberID's unread read-status rows. Broadcasts the member never
// touched are not counted. A failed transaction count yields 0; a failed
// global count yields the transaction count alone.
func (s *Service) UnreadCount(ctx context.Context, memberID string) int {
	txnCount, err := s.store.CountUnreadTransactionNotifications(ctx)
	if err != nil {
		s.log.Warn("counting unread transaction notifications",
			zap.String("member_id", memberID), zap.Error(err))
		return 0
	}

	globalCount, err := s.store.CountUnreadReadStatuses(ctx, memberID)
	if err != nil {
		s.log.Warn("counting unread global notifications",
			zap.String("member_id", memberID), zap.Error(err))
		return txnCount
	}
	return txnCount + globalCount
}
