package testutil

import (
	"context"
	"sync"

	"github.com/dom/uptask-server/internal/notify"
)

// RecordingNotifier keeps every message instead of mailing it.
type RecordingNotifier struct {
	mu            sync.Mutex
	confirmations []notify.Message
	resets        []notify.Message
	err           error
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) SendConfirmation(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, msg)
	return n.err
}

func (n *RecordingNotifier) SendPasswordReset(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, msg)
	return n.err
}

// FailWith makes every later send record the message and then return err.
func (n *RecordingNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = nil
	n.resets = nil
	n.err = nil
}

// Confirmations returns the confirmation mails sent to email.
func (n *RecordingNotifier) Confirmations(email string) []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return filterByEmail(n.confirmations, email)
}

// Resets returns the password reset mails sent to email.
func (n *RecordingNotifier) Resets(email string) []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return filterByEmail(n.resets, email)
}

// LastConfirmationToken returns the newest confirmation token sent to email,
// or "" when there is none.
func (n *RecordingNotifier) LastConfirmationToken(email string) string {
	msgs := n.Confirmations(email)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Token
}

// LastResetToken returns the newest reset token sent to email.
func (n *RecordingNotifier) LastResetToken(email string) string {
	msgs := n.Resets(email)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Token
}

func filterByEmail(msgs []notify.Message, email string) []notify.Message {
	var out []notify.Message
	for _, m := range msgs {
		if m.Email == email {
			out = append(out, m)
		}
	}
	return out
}
