package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/model"
)

// NewGlobalNotification is the input of CreateGlobalNotification. An empty
// Category is stored as absent.
type NewGlobalNotification struct {
	Category model.Category
	Title    string
	Body     string
	Payload  model.Payload
}

// NewTransactionNotification is the input of CreateTransactionNotification.
type NewTransactionNotification struct {
	TransactionID string
	Category      model.Category
	Title         string
	Body          string
	Payload       model.Payload
}

// CreateGlobalNotification publishes a broadcast. On success the feed cache
// is cleared.
func (s *Service) CreateGlobalNotification(ctx context.Context, in NewGlobalNotification) (model.Notification, bool) {
	payload, err := model.EncodePayload(in.Payload)
	if err != nil {
		s.log.Warn("encoding broadcast payload", zap.Error(err))
		return model.Notification{}, false
	}

	created, err := s.store.CreateGlobalNotification(ctx, model.GlobalNotification{
		ID:        uuid.New().String(),
		Category:  in.Category,
		Title:     in.Title,
		Body:      in.Body,
		Payload:   payload,
		CreatedAt: model.FormatTimestamp(s.now()),
	})
	if err != nil {
		s.log.Warn("creating global notification", zap.Error(err))
		return model.Notification{}, false
	}

	s.ClearCache(ctx)
	return s.normalizeGlobal(model.GlobalNotificationView{GlobalNotification: created}, ""), true
}

// CreateTransactionNotification attaches a notification to a transaction.
// On success the feed cache is cleared.
func (s *Service) CreateTransactionNotification(
	ctx context.Context,
	in NewTransactionNotification,
) (model.Notification, bool) {
	payload, err := model.EncodePayload(in.Payload)
	if err != nil {
		s.log.Warn("encoding transaction payload", zap.Error(err))
		return model.Notification{}, false
	}

	unread := false
	created, err := s.store.CreateTransactionNotification(ctx, model.TransactionNotification{
		ID:            uuid.New().String(),
		TransactionID: in.TransactionID,
		Category:      in.Category,
		Title:         in.Title,
		Body:          in.Body,
		Payload:       payload,
		IsRead:        &unread,
		CreatedAt:     model.FormatTimestamp(s.now()),
	})
	if err != nil {
		s.log.Warn("creating transaction notification",
			zap.String("transaction_id", in.TransactionID), zap.Error(err))
		return model.Notification{}, false
	}

	s.ClearCache(ctx)
	return s.normalizeTransaction(created, ""), true
}
