package notify

import (
	"context"
	"log"
)

// LogNotifier writes messages to the process log instead of sending them.
// It is used when no SMTP host is configured.
type LogNotifier struct{}

func (LogNotifier) SendConfirmation(ctx context.Context, msg Message) error {
	log.Printf("INFO [notify.SendConfirmation] to=%s name=%s token=%s", msg.Email, msg.Name, msg.Token)
	return nil
}

func (LogNotifier) SendPasswordReset(ctx context.Context, msg Message) error {
	log.Printf("INFO [notify.SendPasswordReset] to=%s name=%s token=%s", msg.Email, msg.Name, msg.Token)
	return nil
}
