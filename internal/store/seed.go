package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/notification-center/internal/model"
)

// SeedDemo populates st with a small demo data set for memberID: two
// transactions with notifications and a handful of broadcasts. It is used
// by the development backend.
func SeedDemo(ctx context.Context, st Store, memberID string, now time.Time) error {
	at := func(d time.Duration) string {
		return model.FormatTimestamp(now.Add(-d))
	}
	due := now.Add(72 * time.Hour).Format("2006-01-02")
	amount := 129.90

	rent, err := st.CreateTransaction(ctx, model.Transaction{
		MemberID:  memberID,
		Title:     "Monthly rent",
		Amount:    1200,
		DueDate:   &due,
		Status:    "pending",
		CreatedAt: at(96 * time.Hour),
	})
	if err != nil {
		return fmt.Errorf("seeding transaction: %w", err)
	}
	utility, err := st.CreateTransaction(ctx, model.Transaction{
		MemberID:  memberID,
		Title:     "Electricity bill",
		Amount:    amount,
		Status:    "paid",
		CreatedAt: at(48 * time.Hour),
	})
	if err != nil {
		return fmt.Errorf("seeding transaction: %w", err)
	}

	read := true
	txnNotes := []struct {
		category model.Category
		txID     string
		title    string
		body     string
		payload  model.Payload
		isRead   *bool
		age      time.Duration
	}{
		{model.CategoryDueDate, rent.ID, "Rent due soon", "Your rent is due in 3 days.",
			model.TransactionPayload{TransactionID: rent.ID, DueDate: due, Status: "pending"}, nil, 2 * time.Hour},
		{model.CategoryPayment, utility.ID, "Payment received", "We received your electricity payment.",
			model.TransactionPayload{TransactionID: utility.ID, Amount: &amount, Status: "paid"}, &read, 30 * time.Hour},
		{model.CategoryReminder, rent.ID, "Set up autopay", "Never miss a rent payment again.",
			nil, nil, 50 * time.Hour},
	}
	for _, n := range txnNotes {
		payload, err := model.EncodePayload(n.payload)
		if err != nil {
			return err
		}
		_, err = st.CreateTransactionNotification(ctx, model.TransactionNotification{
			TransactionID: n.txID,
			Category:      n.category,
			Title:         n.title,
			Body:          n.body,
			Payload:       payload,
			IsRead:        n.isRead,
			CreatedAt:     at(n.age),
		})
		if err != nil {
			return fmt.Errorf("seeding transaction notification: %w", err)
		}
	}

	broadcasts := []struct {
		category model.Category
		title    string
		body     string
		payload  model.Payload
		age      time.Duration
	}{
		{model.CategoryAnnouncement, "New statements view", "Statements now show category breakdowns.",
			model.BroadcastPayload{Link: "https://example.com/whats-new"}, 5 * time.Hour},
		{model.CategoryMaintenance, "Scheduled maintenance", "Service will be unavailable Sunday 02:00-04:00 UTC.",
			nil, 20 * time.Hour},
		{"", "Welcome", "Thanks for joining.", nil, 200 * time.Hour},
	}
	for _, b := range broadcasts {
		payload, err := model.EncodePayload(b.payload)
		if err != nil {
			return err
		}
		_, err = st.CreateGlobalNotification(ctx, model.GlobalNotification{
			Category:  b.category,
			Title:     b.title,
			Body:      b.body,
			Payload:   payload,
			CreatedAt: at(b.age),
		})
		if err != nil {
			return fmt.Errorf("seeding global notification: %w", err)
		}
	}

	return nil
}
