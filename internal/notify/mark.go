package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

// MarkAsRead marks one notification read for memberID. With
// model.SourceAuto the transaction source is tried before the global one.
// When every direct update fails the privileged procedure is called. Any
// success clears the whole feed cache. An empty memberID fails without
// touching the backend.
func (s *Service) MarkAsRead(
	ctx context.Context,
	notificationID string,
	source model.Source,
	memberID string,
) bool {
	if memberID == "" {
		s.log.Debug("mark as read without member", zap.String("notification_id", notificationID))
		return false
	}

	var layers []strategy[struct{}]
	if source == model.SourceTransaction || source == model.SourceAuto {
		layers = append(layers, strategy[struct{}]{
			name: "direct_transaction",
			run: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.markTransactionRead(ctx, notificationID)
			},
		})
	}
	if source == model.SourceGlobal || source == model.SourceAuto {
		layers = append(layers, strategy[struct{}]{
			name: "direct_global",
			run: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.markGlobalRead(ctx, notificationID, memberID)
			},
		})
	}
	layers = append(layers, strategy[struct{}]{
		name: "privileged",
		run: func(ctx context.Context) (struct{}, error) {
			res, err := s.store.MarkAsReadPrivileged(ctx, notificationID, memberID, source.String())
			if err != nil {
				return struct{}{}, err
			}
			if !res.Success {
				return struct{}{}, fmt.Errorf("%w: %s", errNotApplied, res.Message)
			}
			return struct{}{}, nil
		},
	})

	if _, err := firstSuccess(ctx, s, "mark_as_read", layers...); err != nil {
		s.log.Warn("marking notification read",
			zap.String("member_id", memberID),
			zap.String("notification_id", notificationID),
			zap.String("source", source.String()),
			zap.Error(err))
		return false
	}

	s.ClearCache(ctx)
	return true
}

func (s *Service) markTransactionRead(ctx context.Context, id string) error {
	if _, err := s.store.GetTransactionNotification(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errNotApplied
		}
		return err
	}
	return s.store.UpdateTransactionNotificationRead(ctx, id, true)
}

// markGlobalRead updates the member's read-status row, inserting it on
// first read. The check and the write are separate calls; the backend's
// uniqueness constraint rejects a racing duplicate insert.
func (s *Service) markGlobalRead(ctx context.Context, id, memberID string) error {
	if _, err := s.store.GetGlobalNotification(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errNotApplied
		}
		return err
	}

	existing, err := s.store.GetReadStatus(ctx, id, memberID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.store.UpdateReadStatus(ctx, id, memberID, true)
	}
	return s.store.InsertReadStatus(ctx, model.GlobalReadStatus{
		GlobalNotificationID: id,
		MemberID:             memberID,
		IsRead:               true,
		CreatedAt:            model.FormatTimestamp(s.now()),
	})
}

// MarkAllAsRead marks every notification of memberID's transactions read
// and flips the member's existing read-status rows. Broadcasts without a
// row are left alone. It reports true only when both steps succeed and
// does not invalidate the cache.
func (s *Service) MarkAllAsRead(ctx context.Context, memberID string) bool {
	if memberID == "" {
		return false
	}

	txnOK := true
	ids, err := s.store.MemberTransactionIDs(ctx, memberID)
	if err != nil {
		s.log.Warn("looking up member transactions",
			zap.String("member_id", memberID), zap.Error(err))
		txnOK = false
	} else if len(ids) > 0 {
		if _, err := s.store.MarkTransactionNotificationsRead(ctx, ids); err != nil {
			s.log.Warn("marking transaction notifications read",
				zap.String("member_id", memberID), zap.Error(err))
			txnOK = false
		}
	}

	globalOK := true
	if _, err := s.store.MarkReadStatusesRead(ctx, memberID); err != nil {
		s.log.Warn("marking global read statuses read",
			zap.String("member_id", memberID), zap.Error(err))
		globalOK = false
	}

	return txnOK && globalOK
}
