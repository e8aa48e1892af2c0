package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

// BaseTime is the reference instant fixtures are dated from.
var BaseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// At returns BaseTime shifted by d in storage form.
func At(d time.Duration) string {
	return model.FormatTimestamp(BaseTime.Add(d))
}

// Fixtures inserts records into a store and fails the test on error.
type Fixtures struct {
	t  *testing.T
	st store.Store
}

// NewFixtures returns a fixture builder over st.
func NewFixtures(t *testing.T, st store.Store) *Fixtures {
	return &Fixtures{t: t, st: st}
}

// Transaction creates a transaction owned by memberID.
func (f *Fixtures) Transaction(memberID string) model.Transaction {
	f.t.Helper()
	tx, err := f.st.CreateTransaction(context.Background(), model.Transaction{
		MemberID:  memberID,
		Title:     "txn for " + memberID,
		Amount:    10,
		CreatedAt: At(0),
	})
	if err != nil {
		f.t.Fatalf("creating transaction: %v", err)
	}
	return tx
}

// TransactionNotification creates a notification on transactionID dated
// BaseTime+offset.
func (f *Fixtures) TransactionNotification(
	transactionID string,
	category model.Category,
	isRead bool,
	offset time.Duration,
) model.TransactionNotification {
	f.t.Helper()
	n, err := f.st.CreateTransactionNotification(context.Background(), model.TransactionNotification{
		TransactionID: transactionID,
		Category:      category,
		Title:         string(category) + " notice",
		Body:          "body",
		IsRead:        &isRead,
		CreatedAt:     At(offset),
	})
	if err != nil {
		f.t.Fatalf("creating transaction notification: %v", err)
	}
	return n
}

// GlobalNotification creates a broadcast dated BaseTime+offset. An empty
// category is stored as NULL.
func (f *Fixtures) GlobalNotification(category model.Category, offset time.Duration) model.GlobalNotification {
	f.t.Helper()
	n, err := f.st.CreateGlobalNotification(context.Background(), model.GlobalNotification{
		Category:  category,
		Title:     "broadcast",
		Body:      "body",
		CreatedAt: At(offset),
	})
	if err != nil {
		f.t.Fatalf("creating global notification: %v", err)
	}
	return n
}

// ReadStatus inserts a read-status row for the pair.
func (f *Fixtures) ReadStatus(notificationID, memberID string, isRead bool) {
	f.t.Helper()
	err := f.st.InsertReadStatus(context.Background(), model.GlobalReadStatus{
		GlobalNotificationID: notificationID,
		MemberID:             memberID,
		IsRead:               isRead,
		CreatedAt:            At(0),
	})
	if err != nil {
		f.t.Fatalf("inserting read status: %v", err)
	}
}
