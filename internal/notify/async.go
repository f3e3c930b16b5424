package notify

import (
	"context"
	"log"
	"sync"
)

// Async delivers through next on a background goroutine and returns at once.
// Failures are logged. The request context is detached so that a finished
// request does not cancel a pending delivery.
type Async struct {
	next Notifier
	wg   sync.WaitGroup
}

func NewAsync(next Notifier) *Async {
	return &Async{next: next}
}

func (a *Async) SendConfirmation(ctx context.Context, msg Message) error {
	a.dispatch(ctx, "SendConfirmation", msg, a.next.SendConfirmation)
	return nil
}

func (a *Async) SendPasswordReset(ctx context.Context, msg Message) error {
	a.dispatch(ctx, "SendPasswordReset", msg, a.next.SendPasswordReset)
	return nil
}

func (a *Async) dispatch(ctx context.Context, name string, msg Message, send func(context.Context, Message) error) {
	ctx = context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := send(ctx, msg); err != nil {
			log.Printf("ERROR [notify.%s] to=%s: %v", name, msg.Email, err)
		}
	}()
}

// Wait blocks until every dispatched message has been handed off.
func (a *Async) Wait() {
	a.wg.Wait()
}
