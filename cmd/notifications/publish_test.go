package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
	"github.com/nhle/notification-center/tests/testutil"
)

func TestRunPublish(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("broadcast with link reaches every member", func(t *testing.T) {
		t.Parallel()
		svc := notify.New(testutil.NewTestStore(t))

		before := svc.ListNotifications(ctx, "m1", notify.ListOptions{})
		require.Empty(t, before)

		var out bytes.Buffer
		err := runPublish(ctx, svc, []string{
			"-title", "Scheduled maintenance",
			"-category", string(model.CategoryMaintenance),
			"-link", "https://status.example.com",
		}, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "created global notification")

		for _, member := range []string{"m1", "m2"} {
			feed := svc.ListNotifications(ctx, member, notify.ListOptions{})
			require.Len(t, feed, 1)
			assert.Equal(t, "Scheduled maintenance", feed[0].Title)
			assert.Equal(t, model.BroadcastPayload{Link: "https://status.example.com"}, feed[0].Payload)
		}
	})

	t.Run("transaction notification goes to the owner", func(t *testing.T) {
		t.Parallel()
		st := testutil.NewTestStore(t)
		tx := testutil.NewFixtures(t, st).Transaction("m1")
		svc := notify.New(st)

		var out bytes.Buffer
		err := runPublish(ctx, svc, []string{
			"-title", "Payment received",
			"-category", string(model.CategoryPayment),
			"-transaction", tx.ID,
		}, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "created transaction notification")

		feed := svc.ListNotifications(ctx, "m1", notify.ListOptions{})
		require.Len(t, feed, 1)
		assert.Equal(t, tx.ID, feed[0].TransactionRef)
		assert.False(t, feed[0].IsRead)
		assert.Empty(t, svc.ListNotifications(ctx, "m2", notify.ListOptions{}))
	})

	t.Run("argument errors", func(t *testing.T) {
		t.Parallel()
		svc := notify.New(testutil.NewTestStore(t))
		var out bytes.Buffer

		assert.Error(t, runPublish(ctx, svc, []string{"-body", "no title"}, &out))
		assert.Error(t, runPublish(ctx, svc, []string{"-title", "x", "-transaction", "t1", "-link", "https://x"}, &out))
		assert.Error(t, runPublish(ctx, svc, []string{"-bogus"}, &out))
	})

	t.Run("failed create is reported", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		err := runPublish(ctx, rejectingPublisher{}, []string{"-title", "x"}, &out)
		assert.ErrorContains(t, err, "not created")
		assert.Empty(t, out.String())
	})
}

type rejectingPublisher struct{}

func (rejectingPublisher) CreateGlobalNotification(context.Context, notify.NewGlobalNotification) (model.Notification, bool) {
	return model.Notification{}, false
}

func (rejectingPublisher) CreateTransactionNotification(context.Context, notify.NewTransactionNotification) (model.Notification, bool) {
	return model.Notification{}, false
}
