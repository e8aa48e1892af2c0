package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

// Store implements store.Store against the hosted backend.
type Store struct {
	client *Client
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// NewStore returns a Store that issues its calls through client.
func NewStore(client *Client) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) timestamp() string {
	return model.FormatTimestamp(s.now())
}

func (s *Store) get(ctx context.Context, table string, f *filter, result interface{}) error {
	resp, err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   tablePath(table),
		query:  f.values(),
	})
	if err != nil {
		return err
	}
	return resp.decode(result)
}

func (s *Store) count(ctx context.Context, table string, f *filter) (int, error) {
	resp, err := s.client.do(ctx, request{
		method: http.MethodHead,
		path:   tablePath(table),
		query:  f.values(),
		prefer: []string{preferCountExact},
	})
	if err != nil {
		return 0, err
	}
	return resp.total()
}

func (s *Store) insert(ctx context.Context, table string, body, result interface{}) error {
	resp, err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   tablePath(table),
		body:   body,
		prefer: []string{preferRepresentation},
	})
	if err != nil {
		return err
	}
	return resp.decode(result)
}

func (s *Store) patch(ctx context.Context, table string, f *filter, body, result interface{}) error {
	resp, err := s.client.do(ctx, request{
		method: http.MethodPatch,
		path:   tablePath(table),
		query:  f.values(),
		body:   body,
		prefer: []string{preferRepresentation},
	})
	if err != nil {
		return err
	}
	return resp.decode(result)
}

// patchCount applies body to every matching row and returns how many
// changed.
func (s *Store) patchCount(ctx context.Context, table string, f *filter, body interface{}) (int64, error) {
	resp, err := s.client.do(ctx, request{
		method: http.MethodPatch,
		path:   tablePath(table),
		query:  f.values(),
		body:   body,
		prefer: []string{preferMinimal, preferCountExact},
	})
	if err != nil {
		return 0, err
	}
	n, err := resp.total()
	return int64(n), err
}

func (s *Store) rpc(ctx context.Context, fn string, params, result interface{}) error {
	resp, err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   rpcPath(fn),
		body:   params,
	})
	if err != nil {
		return err
	}
	return resp.decode(result)
}

// === Aggregation procedures ===

func (s *Store) TransactionNotificationsForMember(
	ctx context.Context,
	memberID string,
	limit int,
) ([]model.TransactionNotification, error) {
	var out []model.TransactionNotification
	err := s.rpc(ctx, rpcMemberTransactionNotifications, map[string]interface{}{
		"p_member_id": memberID,
		"p_limit":     limit,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", rpcMemberTransactionNotifications, err)
	}
	return out, nil
}

func (s *Store) GlobalNotificationsWithReadStatus(
	ctx context.Context,
	memberID string,
) ([]model.GlobalNotificationView, error) {
	var out []model.GlobalNotificationView
	err := s.rpc(ctx, rpcGlobalWithReadStatus, map[string]interface{}{
		"p_member_id": memberID,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", rpcGlobalWithReadStatus, err)
	}
	return out, nil
}

func (s *Store) MarkAsReadPrivileged(
	ctx context.Context,
	notificationID, memberID, source string,
) (model.PrivilegedResult, error) {
	var out model.PrivilegedResult
	err := s.rpc(ctx, rpcMarkReadPrivileged, map[string]interface{}{
		"p_notification_id": notificationID,
		"p_member_id":       memberID,
		"p_source":          source,
	}, &out)
	if err != nil {
		return model.PrivilegedResult{}, fmt.Errorf("calling %s: %w", rpcMarkReadPrivileged, err)
	}
	return out, nil
}

// === Transactions ===

func (s *Store) MemberTransactionIDs(ctx context.Context, memberID string) ([]string, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	f := newFilter().selectCols("id").eq("member_id", memberID).orderDesc("created_at")
	if err := s.get(ctx, tableTransactions, f, &rows); err != nil {
		return nil, fmt.Errorf("querying transactions of member %s: %w", memberID, err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	if tx.MemberID == "" {
		return model.Transaction{}, fmt.Errorf("creating transaction: member id is required")
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt == "" {
		tx.CreatedAt = s.timestamp()
	}
	var rows []model.Transaction
	if err := s.insert(ctx, tableTransactions, tx, &rows); err != nil {
		return model.Transaction{}, fmt.Errorf("creating transaction: %w", err)
	}
	if len(rows) == 0 {
		return tx, nil
	}
	return rows[0], nil
}

// === Transaction notifications ===

func (s *Store) ListTransactionNotifications(
	ctx context.Context,
	filter store.TransactionNotificationFilter,
) ([]model.TransactionNotification, error) {
	if filter.TransactionIDs != nil && len(filter.TransactionIDs) == 0 {
		return []model.TransactionNotification{}, nil
	}

	f := newFilter().selectCols("*").orderDesc("created_at").limit(filter.Limit)
	if filter.TransactionIDs != nil {
		f.in("transaction_id", filter.TransactionIDs)
	}
	if filter.Category != nil {
		f.eq("category", string(*filter.Category))
	}

	var out []model.TransactionNotification
	if err := s.get(ctx, tableTransactionNotifications, f, &out); err != nil {
		return nil, fmt.Errorf("querying transaction notifications: %w", err)
	}
	return out, nil
}

func (s *Store) GetTransactionNotification(ctx context.Context, id string) (*model.TransactionNotification, error) {
	var rows []model.TransactionNotification
	f := newFilter().selectCols("*").eq("id", id).limit(1)
	if err := s.get(ctx, tableTransactionNotifications, f, &rows); err != nil {
		return nil, fmt.Errorf("getting transaction notification %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) UpdateTransactionNotificationRead(ctx context.Context, id string, isRead bool) error {
	var rows []model.TransactionNotification
	err := s.patch(ctx, tableTransactionNotifications, newFilter().eq("id", id), map[string]interface{}{
		"is_read":    isRead,
		"updated_at": s.timestamp(),
	}, &rows)
	if err != nil {
		return fmt.Errorf("updating transaction notification %s: %w", id, err)
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) MarkTransactionNotificationsRead(ctx context.Context, transactionIDs []string) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	f := newFilter().in("transaction_id", transactionIDs).eq("is_read", "false")
	n, err := s.patchCount(ctx, tableTransactionNotifications, f, map[string]interface{}{
		"is_read":    true,
		"updated_at": s.timestamp(),
	})
	if err != nil {
		return 0, fmt.Errorf("marking transaction notifications read: %w", err)
	}
	return n, nil
}

func (s *Store) CountUnreadTransactionNotifications(ctx context.Context) (int, error) {
	n, err := s.count(ctx, tableTransactionNotifications, newFilter().selectCols("id").eq("is_read", "false"))
	if err != nil {
		return 0, fmt.Errorf("counting unread transaction notifications: %w", err)
	}
	return n, nil
}

func (s *Store) CreateTransactionNotification(
	ctx context.Context,
	n model.TransactionNotification,
) (model.TransactionNotification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == "" {
		n.CreatedAt = s.timestamp()
	}
	if n.IsRead == nil {
		unread := false
		n.IsRead = &unread
	}
	var rows []model.TransactionNotification
	if err := s.insert(ctx, tableTransactionNotifications, n, &rows); err != nil {
		return model.TransactionNotification{}, fmt.Errorf("creating transaction notification: %w", err)
	}
	if len(rows) == 0 {
		return n, nil
	}
	return rows[0], nil
}

// === Global notifications ===

// readStatusEmbed selects each broadcast with the member's read-status row
// embedded as a one-element (or empty) array.
const readStatusEmbed = "*," + tableReadStatus + "(is_read)"

type joinedGlobalRow struct {
	model.GlobalNotification
	ReadStatus []struct {
		IsRead bool `json:"is_read"`
	} `json:"global_notification_read_status"`
}

func (s *Store) ListGlobalNotifications(
	ctx context.Context,
	filter store.GlobalNotificationFilter,
) ([]model.GlobalNotification, error) {
	f := newFilter().selectCols("*").orderDesc("created_at").limit(filter.Limit)
	if filter.Category != nil {
		f.eq("category", string(*filter.Category))
	}
	var out []model.GlobalNotification
	if err := s.get(ctx, tableGlobalNotifications, f, &out); err != nil {
		return nil, fmt.Errorf("querying global notifications: %w", err)
	}
	return out, nil
}

func (s *Store) ListGlobalNotificationsJoined(
	ctx context.Context,
	memberID string,
	filter store.GlobalNotificationFilter,
) ([]model.GlobalNotificationView, error) {
	f := newFilter().
		selectCols(readStatusEmbed).
		eq(tableReadStatus+".member_id", memberID).
		orderDesc("created_at").
		limit(filter.Limit)
	if filter.Category != nil {
		f.eq("category", string(*filter.Category))
	}

	var rows []joinedGlobalRow
	if err := s.get(ctx, tableGlobalNotifications, f, &rows); err != nil {
		return nil, fmt.Errorf("querying global notifications for member %s: %w", memberID, err)
	}

	out := make([]model.GlobalNotificationView, 0, len(rows))
	for _, r := range rows {
		v := model.GlobalNotificationView{GlobalNotification: r.GlobalNotification}
		if len(r.ReadStatus) > 0 {
			read := r.ReadStatus[0].IsRead
			v.IsRead = &read
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) GetGlobalNotification(ctx context.Context, id string) (*model.GlobalNotification, error) {
	var rows []model.GlobalNotification
	f := newFilter().selectCols("*").eq("id", id).limit(1)
	if err := s.get(ctx, tableGlobalNotifications, f, &rows); err != nil {
		return nil, fmt.Errorf("getting global notification %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

// globalInsert sends an empty category as null.
type globalInsert struct {
	ID        string           `json:"id"`
	Category  *model.Category  `json:"category"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Payload   model.RawPayload `json:"payload"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt *string          `json:"updated_at"`
}

func (s *Store) CreateGlobalNotification(
	ctx context.Context,
	n model.GlobalNotification,
) (model.GlobalNotification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == "" {
		n.CreatedAt = s.timestamp()
	}
	body := globalInsert{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Payload:   n.Payload,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if n.Category != "" {
		category := n.Category
		body.Category = &category
	}

	var rows []model.GlobalNotification
	if err := s.insert(ctx, tableGlobalNotifications, body, &rows); err != nil {
		return model.GlobalNotification{}, fmt.Errorf("creating global notification: %w", err)
	}
	if len(rows) == 0 {
		return n, nil
	}
	return rows[0], nil
}

// === Global read status ===

func (s *Store) ListReadStatuses(ctx context.Context, memberID string) ([]model.GlobalReadStatus, error) {
	var out []model.GlobalReadStatus
	f := newFilter().selectCols("*").eq("member_id", memberID)
	if err := s.get(ctx, tableReadStatus, f, &out); err != nil {
		return nil, fmt.Errorf("querying read statuses of member %s: %w", memberID, err)
	}
	return out, nil
}

func (s *Store) GetReadStatus(ctx context.Context, notificationID, memberID string) (*model.GlobalReadStatus, error) {
	var rows []model.GlobalReadStatus
	f := newFilter().
		selectCols("*").
		eq("global_notification_id", notificationID).
		eq("member_id", memberID).
		limit(1)
	if err := s.get(ctx, tableReadStatus, f, &rows); err != nil {
		return nil, fmt.Errorf("getting read status of %s for member %s: %w", notificationID, memberID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) InsertReadStatus(ctx context.Context, status model.GlobalReadStatus) error {
	if status.CreatedAt == "" {
		status.CreatedAt = s.timestamp()
	}
	if status.ID == "" {
		status.ID = uuid.New().String()
	}
	body := map[string]interface{}{
		"id":                     status.ID,
		"global_notification_id": status.GlobalNotificationID,
		"member_id":              status.MemberID,
		"is_read":                status.IsRead,
		"created_at":             status.CreatedAt,
	}
	if err := s.insert(ctx, tableReadStatus, body, nil); err != nil {
		return fmt.Errorf("inserting read status of %s for member %s: %w",
			status.GlobalNotificationID, status.MemberID, err)
	}
	return nil
}

func (s *Store) UpdateReadStatus(ctx context.Context, notificationID, memberID string, isRead bool) error {
	var rows []model.GlobalReadStatus
	f := newFilter().eq("global_notification_id", notificationID).eq("member_id", memberID)
	err := s.patch(ctx, tableReadStatus, f, map[string]interface{}{
		"is_read":    isRead,
		"updated_at": s.timestamp(),
	}, &rows)
	if err != nil {
		return fmt.Errorf("updating read status of %s for member %s: %w", notificationID, memberID, err)
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) MarkReadStatusesRead(ctx context.Context, memberID string) (int64, error) {
	f := newFilter().eq("member_id", memberID).eq("is_read", "false")
	n, err := s.patchCount(ctx, tableReadStatus, f, map[string]interface{}{
		"is_read":    true,
		"updated_at": s.timestamp(),
	})
	if err != nil {
		return 0, fmt.Errorf("marking read statuses of member %s: %w", memberID, err)
	}
	return n, nil
}

func (s *Store) CountUnreadReadStatuses(ctx context.Context, memberID string) (int, error) {
	f := newFilter().selectCols("id").eq("member_id", memberID).eq("is_read", "false")
	n, err := s.count(ctx, tableReadStatus, f)
	if err != nil {
		return 0, fmt.Errorf("counting unread read statuses of member %s: %w", memberID, err)
	}
	return n, nil
}

// SetClock replaces the time source used for generated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
