// Package notify delivers learner notifications. Delivery is best effort:
// a Notifier reports success as a bool and never fails its caller.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Notifier sends a plain text message to a single recipient.
type Notifier interface {
	// Send reports whether the message was handed to the transport.
	Send(ctx context.Context, to, subject, body string) bool
}

// Disabled is the Notifier used when no transport is configured.
type Disabled struct {
	Logger *slog.Logger
	once   sync.Once
}

func (d *Disabled) Send(ctx context.Context, to, _, _ string) bool {
	d.once.Do(func() {
		logger := d.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.DebugContext(ctx, "email not configured, skipping notifications", "first_recipient", to)
	})
	return false
}

// Message is one recorded notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Recorder keeps every message in memory. Fail makes Send report false
// while still recording.
type Recorder struct {
	mu       sync.Mutex
	Fail     bool
	messages []Message
}

func (r *Recorder) Send(_ context.Context, to, subject, body string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{To: to, Subject: subject, Body: body})
	return !r.Fail
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
