package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

var errInjected = errors.New("injected failure")

// faultyStore wraps a Store, counting calls and failing the methods named
// in fail.
type faultyStore struct {
	next store.Store

	mu    sync.Mutex
	fail  map[string]bool
	calls map[string]int
}

var _ store.Store = (*faultyStore)(nil)

func newFaultyStore(next store.Store, failing ...string) *faultyStore {
	f := &faultyStore{next: next, fail: map[string]bool{}, calls: map[string]int{}}
	for _, m := range failing {
		f.fail[m] = true
	}
	return f
}

func (f *faultyStore) setFailing(methods ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range methods {
		f.fail[m] = true
	}
}

func (f *faultyStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *faultyStore) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *faultyStore) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if f.fail[method] {
		return errInjected
	}
	return nil
}

func (f *faultyStore) TransactionNotificationsForMember(ctx context.Context, memberID string, limit int) ([]model.TransactionNotification, error) {
	if err := f.enter("TransactionNotificationsForMember"); err != nil {
		return nil, err
	}
	return f.next.TransactionNotificationsForMember(ctx, memberID, limit)
}

func (f *faultyStore) GlobalNotificationsWithReadStatus(ctx context.Context, memberID string) ([]model.GlobalNotificationView, error) {
	if err := f.enter("GlobalNotificationsWithReadStatus"); err != nil {
		return nil, err
	}
	return f.next.GlobalNotificationsWithReadStatus(ctx, memberID)
}

func (f *faultyStore) MarkAsReadPrivileged(ctx context.Context, notificationID, memberID, source string) (model.PrivilegedResult, error) {
	if err := f.enter("MarkAsReadPrivileged"); err != nil {
		return model.PrivilegedResult{}, err
	}
	return f.next.MarkAsReadPrivileged(ctx, notificationID, memberID, source)
}

func (f *faultyStore) MemberTransactionIDs(ctx context.Context, memberID string) ([]string, error) {
	if err := f.enter("MemberTransactionIDs"); err != nil {
		return nil, err
	}
	return f.next.MemberTransactionIDs(ctx, memberID)
}

func (f *faultyStore) CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	if err := f.enter("CreateTransaction"); err != nil {
		return model.Transaction{}, err
	}
	return f.next.CreateTransaction(ctx, tx)
}

func (f *faultyStore) ListTransactionNotifications(ctx context.Context, filter store.TransactionNotificationFilter) ([]model.TransactionNotification, error) {
	if err := f.enter("ListTransactionNotifications"); err != nil {
		return nil, err
	}
	return f.next.ListTransactionNotifications(ctx, filter)
}

func (f *faultyStore) GetTransactionNotification(ctx context.Context, id string) (*model.TransactionNotification, error) {
	if err := f.enter("GetTransactionNotification"); err != nil {
		return nil, err
	}
	return f.next.GetTransactionNotification(ctx, id)
}

func (f *faultyStore) UpdateTransactionNotificationRead(ctx context.Context, id string, isRead bool) error {
	if err := f.enter("UpdateTransactionNotificationRead"); err != nil {
		return err
	}
	return f.next.UpdateTransactionNotificationRead(ctx, id, isRead)
}

func (f *faultyStore) MarkTransactionNotificationsRead(ctx context.Context, transactionIDs []string) (int64, error) {
	if err := f.enter("MarkTransactionNotificationsRead"); err != nil {
		return 0, err
	}
	return f.next.MarkTransactionNotificationsRead(ctx, transactionIDs)
}

func (f *faultyStore) CountUnreadTransactionNotifications(ctx context.Context) (int, error) {
	if err := f.enter("CountUnreadTransactionNotifications"); err != nil {
		return 0, err
	}
	return f.next.CountUnreadTransactionNotifications(ctx)
}

func (f *faultyStore) CreateTransactionNotification(ctx context.Context, n model.TransactionNotification) (model.TransactionNotification, error) {
	if err := f.enter("CreateTransactionNotification"); err != nil {
		return model.TransactionNotification{}, err
	}
	return f.next.CreateTransactionNotification(ctx, n)
}

func (f *faultyStore) ListGlobalNotifications(ctx context.Context, filter store.GlobalNotificationFilter) ([]model.GlobalNotification, error) {
	if err := f.enter("ListGlobalNotifications"); err != nil {
		return nil, err
	}
	return f.next.ListGlobalNotifications(ctx, filter)
}

func (f *faultyStore) ListGlobalNotificationsJoined(ctx context.Context, memberID string, filter store.GlobalNotificationFilter) ([]model.GlobalNotificationView, error) {
	if err := f.enter("ListGlobalNotificationsJoined"); err != nil {
		return nil, err
	}
	return f.next.ListGlobalNotificationsJoined(ctx, memberID, filter)
}

func (f *faultyStore) GetGlobalNotification(ctx context.Context, id string) (*model.GlobalNotification, error) {
	if err := f.enter("GetGlobalNotification"); err != nil {
		return nil, err
	}
	return f.next.GetGlobalNotification(ctx, id)
}

func (f *faultyStore) CreateGlobalNotification(ctx context.Context, n model.GlobalNotification) (model.GlobalNotification, error) {
	if err := f.enter("CreateGlobalNotification"); err != nil {
		return model.GlobalNotification{}, err
	}
	return f.next.CreateGlobalNotification(ctx, n)
}

func (f *faultyStore) ListReadStatuses(ctx context.Context, memberID string) ([]model.GlobalReadStatus, error) {
	if err := f.enter("ListReadStatuses"); err != nil {
		return nil, err
	}
	return f.next.ListReadStatuses(ctx, memberID)
}

func (f *faultyStore) GetReadStatus(ctx context.Context, notificationID, memberID string) (*model.GlobalReadStatus, error) {
	if err := f.enter("GetReadStatus"); err != nil {
		return nil, err
	}
	return f.next.GetReadStatus(ctx, notificationID, memberID)
}

func (f *faultyStore) InsertReadStatus(ctx context.Context, status model.GlobalReadStatus) error {
	if err := f.enter("InsertReadStatus"); err != nil {
		return err
	}
	return f.next.InsertReadStatus(ctx, status)
}

func (f *faultyStore) UpdateReadStatus(ctx context.Context, notificationID, memberID string, isRead bool) error {
	if err := f.enter("UpdateReadStatus"); err != nil {
		return err
	}
	return f.next.UpdateReadStatus(ctx, notificationID, memberID, isRead)
}

func (f *faultyStore) MarkReadStatusesRead(ctx context.Context, memberID string) (int64, error) {
	if err := f.enter("MarkReadStatusesRead"); err != nil {
		return 0, err
	}
	return f.next.MarkReadStatusesRead(ctx, memberID)
}

func (f *faultyStore) CountUnreadReadStatuses(ctx context.Context, memberID string) (int, error) {
	if err := f.enter("CountUnreadReadStatuses"); err != nil {
		return 0, err
	}
	return f.next.CountUnreadReadStatuses(ctx, memberID)
}
