package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/notification-center/internal/model"
)

const transactionNotificationColumns = `
	n.id, n.transaction_id, n.category, n.title, n.body, n.payload,
	n.is_read, n.created_at, n.updated_at`

// CreateTransaction inserts a transaction. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateTransaction(
	ctx context.Context,
	tx model.Transaction,
) (model.Transaction, error) {
	if strings.TrimSpace(tx.MemberID) == "" {
		return model.Transaction{}, fmt.Errorf("transaction member_id must not be empty")
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt == "" {
		tx.CreatedAt = s.timestamp()
	}
	if tx.Status == "" {
		tx.Status = "pending"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, member_id, title, amount, due_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.MemberID, tx.Title, tx.Amount, tx.DueDate, tx.Status, tx.CreatedAt,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("creating transaction: %w", err)
	}
	return tx, nil
}

// MemberTransactionIDs returns the ids of every transaction owned by
// memberID.
func (s *SQLiteStore) MemberTransactionIDs(
	ctx context.Context,
	memberID string,
) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		"SELECT id FROM transactions WHERE member_id = ? ORDER BY created_at DESC",
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transactions of member %s: %w", memberID, err)
	}
	return ids, nil
}

// TransactionNotificationsForMember joins transaction notifications to
// their owning transaction and filters by member.
func (s *SQLiteStore) TransactionNotificationsForMember(
	ctx context.Context,
	memberID string,
	limit int,
) ([]model.TransactionNotification, error) {
	query := "SELECT" + transactionNotificationColumns + `
		FROM transaction_notifications n
		JOIN transactions t ON t.id = n.transaction_id
		WHERE t.member_id = ?
		ORDER BY n.created_at DESC`
	args := []interface{}{memberID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var out []model.TransactionNotification
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("querying transaction notifications of member %s: %w", memberID, err)
	}
	return out, nil
}

// ListTransactionNotifications retrieves transaction notifications matching
// filter, newest first.
func (s *SQLiteStore) ListTransactionNotifications(
	ctx context.Context,
	filter TransactionNotificationFilter,
) ([]model.TransactionNotification, error) {
	if filter.TransactionIDs != nil && len(filter.TransactionIDs) == 0 {
		return []model.TransactionNotification{}, nil
	}

	var conditions []string
	var args []interface{}

	if filter.TransactionIDs != nil {
		conditions = append(conditions, "n.transaction_id IN (?)")
		args = append(args, filter.TransactionIDs)
	}
	if filter.Category != nil {
		conditions = append(conditions, "n.category = ?")
		args = append(args, string(*filter.Category))
	}

	query := "SELECT" + transactionNotificationColumns + " FROM transaction_notifications n"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY n.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	if filter.TransactionIDs != nil {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, fmt.Errorf("expanding transaction id filter: %w", err)
		}
	}

	var out []model.TransactionNotification
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying transaction notifications: %w", err)
	}
	return out, nil
}

// GetTransactionNotification retrieves a single transaction notification.
// Returns ErrNotFound when the id does not exist.
func (s *SQLiteStore) GetTransactionNotification(
	ctx context.Context,
	id string,
) (*model.TransactionNotification, error) {
	var n model.TransactionNotification
	err := s.db.GetContext(ctx, &n,
		"SELECT"+transactionNotificationColumns+" FROM transaction_notifications n WHERE n.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction notification %s: %w", id, err)
	}
	return &n, nil
}

// UpdateTransactionNotificationRead sets the read flag and refreshes
// updated_at. Returns ErrNotFound when the id does not exist.
func (s *SQLiteStore) UpdateTransactionNotificationRead(
	ctx context.Context,
	id string,
	isRead bool,
) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE transaction_notifications SET is_read = ?, updated_at = ? WHERE id = ?",
		boolToInt(isRead), s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("updating transaction notification %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkTransactionNotificationsRead marks every unread notification of the
// given transactions as read and reports how many rows changed.
func (s *SQLiteStore) MarkTransactionNotificationsRead(
	ctx context.Context,
	transactionIDs []string,
) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`
		UPDATE transaction_notifications SET is_read = 1, updated_at = ?
		WHERE is_read = 0 AND transaction_id IN (?)`,
		s.timestamp(), transactionIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("expanding transaction id filter: %w", err)
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("marking transaction notifications read: %w", err)
	}
	return result.RowsAffected()
}

// CountUnreadTransactionNotifications counts unread transaction
// notifications across all members.
func (s *SQLiteStore) CountUnreadTransactionNotifications(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM transaction_notifications WHERE is_read = 0")
	if err != nil {
		return 0, fmt.Errorf("counting unread transaction notifications: %w", err)
	}
	return count, nil
}

// CreateTransactionNotification inserts a transaction notification.
// Generates a UUID if ID is empty and stamps created_at if unset.
func (s *SQLiteStore) CreateTransactionNotification(
	ctx context.Context,
	n model.TransactionNotification,
) (model.TransactionNotification, error) {
	if strings.TrimSpace(n.Title) == "" {
		return model.TransactionNotification{}, fmt.Errorf("notification title must not be empty")
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == "" {
		n.CreatedAt = s.timestamp()
	}
	isRead := false
	if n.IsRead != nil {
		isRead = *n.IsRead
	}
	n.IsRead = &isRead

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transaction_notifications (
			id, transaction_id, category, title, body, payload,
			is_read, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.TransactionID, string(n.Category), n.Title, n.Body, n.Payload,
		boolToInt(isRead), n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return model.TransactionNotification{}, fmt.Errorf("creating transaction notification: %w", err)
	}
	return n, nil
}
