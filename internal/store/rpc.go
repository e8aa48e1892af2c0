package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/notification-center/internal/model"
)

// MarkAsReadPrivileged emulates the trusted server-side mark-as-read
// procedure. The global branch upserts so concurrent callers cannot create
// duplicate read-status rows.
func (s *SQLiteStore) MarkAsReadPrivileged(
	ctx context.Context,
	notificationID, memberID, source string,
) (model.PrivilegedResult, error) {
	if memberID == "" {
		return model.PrivilegedResult{Message: "member id is required"}, nil
	}

	src, err := model.ParseSource(source)
	if err != nil {
		return model.PrivilegedResult{Message: err.Error()}, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.PrivilegedResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.timestamp()
	var marked bool

	if src == model.SourceTransaction || src == model.SourceAuto {
		result, err := tx.ExecContext(ctx,
			"UPDATE transaction_notifications SET is_read = 1, updated_at = ? WHERE id = ?",
			now, notificationID,
		)
		if err != nil {
			return model.PrivilegedResult{}, fmt.Errorf("updating transaction notification %s: %w", notificationID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return model.PrivilegedResult{}, fmt.Errorf("checking rows affected: %w", err)
		}
		marked = n > 0
	}

	if !marked && (src == model.SourceGlobal || src == model.SourceAuto) {
		marked, err = upsertReadStatus(ctx, tx, notificationID, memberID, now)
		if err != nil {
			return model.PrivilegedResult{}, err
		}
	}

	if !marked {
		return model.PrivilegedResult{
			Message: fmt.Sprintf("notification %s not found", notificationID),
		}, nil
	}

	if err := tx.Commit(); err != nil {
		return model.PrivilegedResult{}, fmt.Errorf("committing mark as read: %w", err)
	}
	return model.PrivilegedResult{Success: true, Message: "marked as read"}, nil
}

// upsertReadStatus marks the global notification read for memberID,
// reporting false when the notification does not exist.
func upsertReadStatus(
	ctx context.Context,
	tx *sqlx.Tx,
	notificationID, memberID, now string,
) (bool, error) {
	var exists int
	err := tx.GetContext(ctx, &exists,
		"SELECT COUNT(*) FROM global_notifications WHERE id = ?", notificationID)
	if err != nil {
		return false, fmt.Errorf("checking global notification %s: %w", notificationID, err)
	}
	if exists == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO global_notification_read_status (
			id, global_notification_id, member_id, is_read, created_at, updated_at
		) VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(global_notification_id, member_id)
		DO UPDATE SET is_read = 1, updated_at = excluded.updated_at`,
		uuid.New().String(), notificationID, memberID, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("upserting read status of %s for member %s: %w", notificationID, memberID, err)
	}
	return true, nil
}
