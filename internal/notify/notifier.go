// Package notify delivers account emails. Delivery is best effort: callers
// log failures and never undo the state change that triggered a message.
package notify

import "context"

// Message addresses one account email.
type Message struct {
	Email string
	Name  string
	Token string
}

type Notifier interface {
	SendConfirmation(ctx context.Context, msg Message) error
	SendPasswordReset(ctx context.Context, msg Message) error
}
