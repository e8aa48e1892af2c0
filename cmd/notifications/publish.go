package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
)

type publisher interface {
	CreateGlobalNotification(ctx context.Context, in notify.NewGlobalNotification) (model.Notification, bool)
	CreateTransactionNotification(ctx context.Context, in notify.NewTransactionNotification) (model.Notification, bool)
}

// runPublish handles "notifications publish". Without -transaction it
// publishes a broadcast.
func runPublish(ctx context.Context, pub publisher, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(out)
	title := fs.String("title", "", "notification title (required)")
	body := fs.String("body", "", "notification body")
	category := fs.String("category", "", "notification category")
	txID := fs.String("transaction", "", "transaction id to attach the notification to")
	link := fs.String("link", "", "link shown with a broadcast")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("publish: -title is required")
	}

	var (
		n  model.Notification
		ok bool
	)
	if *txID != "" {
		if *link != "" {
			return errors.New("publish: -link only applies to broadcasts")
		}
		n, ok = pub.CreateTransactionNotification(ctx, notify.NewTransactionNotification{
			TransactionID: *txID,
			Category:      model.Category(*category),
			Title:         *title,
			Body:          *body,
		})
	} else {
		var payload model.Payload
		if *link != "" {
			payload = model.BroadcastPayload{Link: *link}
		}
		n, ok = pub.CreateGlobalNotification(ctx, notify.NewGlobalNotification{
			Category: model.Category(*category),
			Title:    *title,
			Body:     *body,
			Payload:  payload,
		})
	}
	if !ok {
		return errors.New("publish: notification was not created, see the log for details")
	}

	fmt.Fprintf(out, "created %s notification %s\n", n.Source, n.ID)
	return nil
}
