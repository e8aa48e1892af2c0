package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/notification-center/internal/model"
)

// Category is nullable; COALESCE keeps the scan total without inventing a
// category.
const globalNotificationColumns = `
	g.id, COALESCE(g.category, '') AS category, g.title, g.body, g.payload,
	g.created_at, g.updated_at`

// ListGlobalNotifications retrieves global notifications matching filter,
// newest first.
func (s *SQLiteStore) ListGlobalNotifications(
	ctx context.Context,
	filter GlobalNotificationFilter,
) ([]model.GlobalNotification, error) {
	query := "SELECT" + globalNotificationColumns + " FROM global_notifications g"
	var args []interface{}
	if filter.Category != nil {
		query += " WHERE g.category = ?"
		args = append(args, string(*filter.Category))
	}
	query += " ORDER BY g.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var out []model.GlobalNotification
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("querying global notifications: %w", err)
	}
	return out, nil
}

// ListGlobalNotificationsJoined retrieves global notifications left-joined
// with memberID's read-status rows. IsRead is nil where no row exists.
func (s *SQLiteStore) ListGlobalNotificationsJoined(
	ctx context.Context,
	memberID string,
	filter GlobalNotificationFilter,
) ([]model.GlobalNotificationView, error) {
	query := "SELECT" + globalNotificationColumns + `, rs.is_read AS is_read
		FROM global_notifications g
		LEFT JOIN global_notification_read_status rs
			ON rs.global_notification_id = g.id AND rs.member_id = ?`
	args := []interface{}{memberID}
	if filter.Category != nil {
		query += " WHERE g.category = ?"
		args = append(args, string(*filter.Category))
	}
	query += " ORDER BY g.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var out []model.GlobalNotificationView
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("querying global notifications for member %s: %w", memberID, err)
	}
	return out, nil
}

// GlobalNotificationsWithReadStatus is the aggregation procedure over the
// joined query, unfiltered and uncapped.
func (s *SQLiteStore) GlobalNotificationsWithReadStatus(
	ctx context.Context,
	memberID string,
) ([]model.GlobalNotificationView, error) {
	return s.ListGlobalNotificationsJoined(ctx, memberID, GlobalNotificationFilter{})
}

// GetGlobalNotification retrieves a single global notification.
// Returns ErrNotFound when the id does not exist.
func (s *SQLiteStore) GetGlobalNotification(
	ctx context.Context,
	id string,
) (*model.GlobalNotification, error) {
	var n model.GlobalNotification
	err := s.db.GetContext(ctx, &n,
		"SELECT"+globalNotificationColumns+" FROM global_notifications g WHERE g.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting global notification %s: %w", id, err)
	}
	return &n, nil
}

// CreateGlobalNotification inserts a broadcast notification. An empty
// category is stored as NULL.
func (s *SQLiteStore) CreateGlobalNotification(
	ctx context.Context,
	n model.GlobalNotification,
) (model.GlobalNotification, error) {
	if strings.TrimSpace(n.Title) == "" {
		return model.GlobalNotification{}, fmt.Errorf("notification title must not be empty")
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == "" {
		n.CreatedAt = s.timestamp()
	}

	var category *string
	if n.Category != "" {
		c := string(n.Category)
		category = &c
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO global_notifications (id, category, title, body, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, category, n.Title, n.Body, n.Payload, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return model.GlobalNotification{}, fmt.Errorf("creating global notification: %w", err)
	}
	return n, nil
}

const readStatusColumns = `
	id, global_notification_id, member_id, is_read, created_at, updated_at`

// ListReadStatuses returns every read-status row of memberID.
func (s *SQLiteStore) ListReadStatuses(
	ctx context.Context,
	memberID string,
) ([]model.GlobalReadStatus, error) {
	var out []model.GlobalReadStatus
	err := s.db.SelectContext(ctx, &out,
		"SELECT"+readStatusColumns+" FROM global_notification_read_status WHERE member_id = ?",
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying read statuses of member %s: %w", memberID, err)
	}
	return out, nil
}

// GetReadStatus returns the read-status row for the pair, or nil, nil when
// none exists.
func (s *SQLiteStore) GetReadStatus(
	ctx context.Context,
	notificationID, memberID string,
) (*model.GlobalReadStatus, error) {
	var rs model.GlobalReadStatus
	err := s.db.GetContext(ctx, &rs,
		"SELECT"+readStatusColumns+` FROM global_notification_read_status
		WHERE global_notification_id = ? AND member_id = ?`,
		notificationID, memberID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting read status of %s for member %s: %w", notificationID, memberID, err)
	}
	return &rs, nil
}

// InsertReadStatus inserts a new read-status row. A second row for the same
// pair violates the UNIQUE constraint and fails.
func (s *SQLiteStore) InsertReadStatus(
	ctx context.Context,
	status model.GlobalReadStatus,
) error {
	if status.ID == "" {
		status.ID = uuid.New().String()
	}
	if status.CreatedAt == "" {
		status.CreatedAt = s.timestamp()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO global_notification_read_status (
			id, global_notification_id, member_id, is_read, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		status.ID, status.GlobalNotificationID, status.MemberID,
		boolToInt(status.IsRead), status.CreatedAt, status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting read status of %s for member %s: %w",
			status.GlobalNotificationID, status.MemberID, err)
	}
	return nil
}

// UpdateReadStatus sets the read flag of an existing row. Returns
// ErrNotFound when the pair has no row.
func (s *SQLiteStore) UpdateReadStatus(
	ctx context.Context,
	notificationID, memberID string,
	isRead bool,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE global_notification_read_status SET is_read = ?, updated_at = ?
		WHERE global_notification_id = ? AND member_id = ?`,
		boolToInt(isRead), s.timestamp(), notificationID, memberID,
	)
	if err != nil {
		return fmt.Errorf("updating read status of %s for member %s: %w", notificationID, memberID, err)
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

// MarkReadStatusesRead flips every unread row of memberID to read. It never
// creates rows.
func (s *SQLiteStore) MarkReadStatusesRead(
	ctx context.Context,
	memberID string,
) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE global_notification_read_status SET is_read = 1, updated_at = ?
		WHERE member_id = ? AND is_read = 0`,
		s.timestamp(), memberID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking read statuses of member %s: %w", memberID, err)
	}
	return result.RowsAffected()
}

// CountUnreadReadStatuses counts memberID's read-status rows with
// is_read = false.
func (s *SQLiteStore) CountUnreadReadStatuses(
	ctx context.Context,
	memberID string,
) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM global_notification_read_status WHERE member_id = ? AND is_read = 0",
		memberID,
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread read statuses of member %s: %w", memberID, err)
	}
	return count, nil
}
