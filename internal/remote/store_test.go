package remote_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/devserver"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
	"github.com/nhle/notification-center/internal/remote"
	"github.com/nhle/notification-center/internal/store"
	"github.com/nhle/notification-center/tests/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	apiKey = "dev-key"
	member = "member-1"
)

// newRemoteStore starts a dev backend over a fresh SQLite store and returns
// a remote store pointed at it.
func newRemoteStore(t *testing.T) *remote.Store {
	t.Helper()

	backend := testutil.NewTestStore(t)
	srv := httptest.NewServer(devserver.New(backend, devserver.Options{
		APIKey:   apiKey,
		Gatherer: prometheus.NewRegistry(),
	}).Handler())
	t.Cleanup(srv.Close)

	st := remote.NewStore(remote.NewClient(remote.Options{
		BaseURL:       srv.URL,
		APIKey:        apiKey,
		RetryInterval: time.Millisecond,
	}))
	st.SetClock(func() time.Time { return testutil.BaseTime.Add(time.Hour) })
	return st
}

func TestStoreTransactionNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newRemoteStore(t)
	fx := testutil.NewFixtures(t, st)

	mine := fx.Transaction(member)
	theirs := fx.Transaction("member-2")
	older := fx.TransactionNotification(mine.ID, model.CategoryPayment, false, time.Hour)
	newer := fx.TransactionNotification(mine.ID, model.CategoryDueDate, false, 2*time.Hour)
	fx.TransactionNotification(theirs.ID, model.CategoryPayment, false, 3*time.Hour)

	t.Run("procedure", func(t *testing.T) {
		got, err := st.TransactionNotificationsForMember(ctx, member, 50)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, older.ID, got[1].ID)
	})

	t.Run("table path", func(t *testing.T) {
		ids, err := st.MemberTransactionIDs(ctx, member)
		require.NoError(t, err)
		assert.Equal(t, []string{mine.ID}, ids)

		got, err := st.ListTransactionNotifications(ctx, store.TransactionNotificationFilter{
			TransactionIDs: ids,
			Limit:          1,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, newer.ID, got[0].ID)

		payment := model.CategoryPayment
		byCategory, err := st.ListTransactionNotifications(ctx, store.TransactionNotificationFilter{
			Category: &payment,
		})
		require.NoError(t, err)
		assert.Len(t, byCategory, 2)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := st.GetTransactionNotification(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, st.UpdateTransactionNotificationRead(ctx, "missing", true), store.ErrNotFound)
	})
}

func TestStoreReadFlags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newRemoteStore(t)
	fx := testutil.NewFixtures(t, st)

	tx := fx.Transaction(member)
	a := fx.TransactionNotification(tx.ID, model.CategoryPayment, false, 0)
	fx.TransactionNotification(tx.ID, model.CategoryPayment, false, time.Hour)
	g := fx.GlobalNotification(model.CategoryAnnouncement, 0)
	h := fx.GlobalNotification("", time.Hour)

	count, err := st.CountUnreadTransactionNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, st.UpdateTransactionNotificationRead(ctx, a.ID, true))
	got, err := st.GetTransactionNotification(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.IsRead)
	assert.True(t, *got.IsRead)

	changed, err := st.MarkTransactionNotificationsRead(ctx, []string{tx.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	rs, err := st.GetReadStatus(ctx, g.ID, member)
	require.NoError(t, err)
	assert.Nil(t, rs)

	require.NoError(t, st.InsertReadStatus(ctx, model.GlobalReadStatus{
		GlobalNotificationID: g.ID,
		MemberID:             member,
	}))
	err = st.InsertReadStatus(ctx, model.GlobalReadStatus{
		GlobalNotificationID: g.ID,
		MemberID:             member,
	})
	assert.True(t, remote.IsConflict(err))

	fx.ReadStatus(h.ID, member, false)
	unread, err := st.CountUnreadReadStatuses(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, st.UpdateReadStatus(ctx, g.ID, member, true))
	assert.ErrorIs(t, st.UpdateReadStatus(ctx, g.ID, "member-2", true), store.ErrNotFound)

	changed, err = st.MarkReadStatusesRead(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	statuses, err := st.ListReadStatuses(ctx, member)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	joined, err := st.ListGlobalNotificationsJoined(ctx, member, store.GlobalNotificationFilter{})
	require.NoError(t, err)
	require.Len(t, joined, 2)
	for _, v := range joined {
		require.NotNil(t, v.IsRead)
		assert.True(t, *v.IsRead)
	}

	fresh, err := st.ListGlobalNotificationsJoined(ctx, "member-2", store.GlobalNotificationFilter{})
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Nil(t, fresh[0].IsRead)
	assert.Equal(t, h.ID, fresh[0].ID)
	assert.Equal(t, model.Category(""), fresh[0].Category)
}

func TestStoreUnauthorized(t *testing.T) {
	t.Parallel()

	backend := testutil.NewTestStore(t)
	srv := httptest.NewServer(devserver.New(backend, devserver.Options{
		APIKey:   apiKey,
		Gatherer: prometheus.NewRegistry(),
	}).Handler())
	t.Cleanup(srv.Close)

	st := remote.NewStore(remote.NewClient(remote.Options{BaseURL: srv.URL, APIKey: "wrong"}))
	_, err := st.MemberTransactionIDs(context.Background(), member)
	require.Error(t, err)
	assert.True(t, remote.IsAuthError(err))
}

// The service behaves the same over the remote store as over SQLite.
func TestServiceOverRemoteStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newRemoteStore(t)
	fx := testutil.NewFixtures(t, st)

	tx := fx.Transaction(member)
	read := fx.TransactionNotification(tx.ID, model.CategoryPayment, true, time.Hour)
	unread := fx.TransactionNotification(tx.ID, model.CategoryDueDate, false, 3*time.Hour)
	older := fx.GlobalNotification(model.CategoryAnnouncement, 2*time.Hour)
	newer := fx.GlobalNotification(model.CategorySystem, 4*time.Hour)

	svc := notify.New(st)
	t.Cleanup(func() { _ = svc.Close() })

	feed := svc.ListNotifications(ctx, member, notify.ListOptions{})
	require.Len(t, feed, 4)
	assert.Equal(t, []string{newer.ID, unread.ID, older.ID, read.ID},
		[]string{feed[0].ID, feed[1].ID, feed[2].ID, feed[3].ID})
	assert.Equal(t, model.SourceGlobal, feed[0].Source)
	assert.False(t, feed[0].IsRead)
	assert.True(t, feed[3].IsRead)

	assert.Equal(t, 1, svc.UnreadCount(ctx, member))

	assert.True(t, svc.MarkAsRead(ctx, newer.ID, model.SourceAuto, member))
	feed = svc.ListNotifications(ctx, member, notify.ListOptions{})
	require.Len(t, feed, 4)
	assert.True(t, feed[0].IsRead)

	byType := svc.ListNotificationsByType(ctx, member, model.CategoryAnnouncement, 0)
	require.Len(t, byType, 1)
	assert.Equal(t, older.ID, byType[0].ID)

	assert.True(t, svc.MarkAllAsRead(ctx, member))
	assert.Equal(t, 0, svc.UnreadCount(ctx, member))
}
