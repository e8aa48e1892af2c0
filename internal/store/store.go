package store

import (
	"context"
	"errors"

	"github.com/nhle/notification-center/internal/model"
)

// ErrNotFound is returned by single-record lookups when no row matches.
var ErrNotFound = errors.New("not found")

// TransactionNotificationFilter controls transaction-notification queries.
// Results are always ordered by created_at descending.
type TransactionNotificationFilter struct {
	// TransactionIDs restricts results to these transactions. A nil slice
	// means no restriction; a non-nil empty slice matches nothing.
	TransactionIDs []string

	Category *model.Category

	// Limit caps the result size; zero means unlimited.
	Limit int
}

// GlobalNotificationFilter controls global-notification queries. Results are
// always ordered by created_at descending.
type GlobalNotificationFilter struct {
	Category *model.Category
	Limit    int
}

// Store is the backend contract consumed by the notification service. It is
// implemented locally by SQLiteStore and remotely by remote.Store.
type Store interface {
	// === Aggregation procedures ===

	// TransactionNotificationsForMember returns the member's transaction
	// notifications, newest first, capped at limit.
	TransactionNotificationsForMember(ctx context.Context, memberID string, limit int) ([]model.TransactionNotification, error)

	// GlobalNotificationsWithReadStatus returns every global notification
	// pre-joined with the member's read flag.
	GlobalNotificationsWithReadStatus(ctx context.Context, memberID string) ([]model.GlobalNotificationView, error)

	// MarkAsReadPrivileged marks a notification read through the trusted
	// server-side procedure. source is "transaction", "global" or "auto".
	MarkAsReadPrivileged(ctx context.Context, notificationID, memberID, source string) (model.PrivilegedResult, error)

	// === Transactions ===

	MemberTransactionIDs(ctx context.Context, memberID string) ([]string, error)
	CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)

	// === Transaction notifications ===

	ListTransactionNotifications(ctx context.Context, filter TransactionNotificationFilter) ([]model.TransactionNotification, error)
	GetTransactionNotification(ctx context.Context, id string) (*model.TransactionNotification, error)
	UpdateTransactionNotificationRead(ctx context.Context, id string, isRead bool) error
	MarkTransactionNotificationsRead(ctx context.Context, transactionIDs []string) (int64, error)
	CountUnreadTransactionNotifications(ctx context.Context) (int, error)
	CreateTransactionNotification(ctx context.Context, n model.TransactionNotification) (model.TransactionNotification, error)

	// === Global notifications ===

	ListGlobalNotifications(ctx context.Context, filter GlobalNotificationFilter) ([]model.GlobalNotification, error)
	ListGlobalNotificationsJoined(ctx context.Context, memberID string, filter GlobalNotificationFilter) ([]model.GlobalNotificationView, error)
	GetGlobalNotification(ctx context.Context, id string) (*model.GlobalNotification, error)
	CreateGlobalNotification(ctx context.Context, n model.GlobalNotification) (model.GlobalNotification, error)

	// === Global read status ===

	ListReadStatuses(ctx context.Context, memberID string) ([]model.GlobalReadStatus, error)

	// GetReadStatus returns nil, nil when the member has no row for the
	// notification.
	GetReadStatus(ctx context.Context, notificationID, memberID string) (*model.GlobalReadStatus, error)
	InsertReadStatus(ctx context.Context, status model.GlobalReadStatus) error
	UpdateReadStatus(ctx context.Context, notificationID, memberID string, isRead bool) error
	MarkReadStatusesRead(ctx context.Context, memberID string) (int64, error)
	CountUnreadReadStatuses(ctx context.Context, memberID string) (int, error)
}
