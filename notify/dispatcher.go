// Package notify delivers password reset messages off the request path.
// Handlers enqueue, a single worker drains, and a full queue drops rather
// than blocking sign-in latency on an outbound email.
package notify

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ResetPasswordEmail is one queued reset notification. The secret key doubles
// as the single-use reset capability: it stops working the moment the user's
// signing secret rotates again.
type ResetPasswordEmail struct {
	ID        uuid.UUID
	Email     string
	SecretKey string
}

// Sender delivers a single message. Implementations must be safe for use from
// the dispatcher worker goroutine.
type Sender interface {
	SendResetPassword(msg ResetPasswordEmail) error
}

// Logger is the minimal structured logger the dispatcher needs.
type Logger interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// LogSender writes the reset link to the log instead of sending mail. It is
// the default wiring for local development.
type LogSender struct {
	BaseURL string
	Logger  Logger
}

func (s LogSender) SendResetPassword(msg ResetPasswordEmail) error {
	s.Logger.Info("password reset requested",
		"id", msg.ID.String(),
		"email", msg.Email,
		"link", fmt.Sprintf("%s/password/reset/%s", s.BaseURL, msg.SecretKey),
	)
	return nil
}

const defaultQueueSize = 64

// Dispatcher owns the queue and the worker goroutine.
type Dispatcher struct {
	sender Sender
	logger Logger
	queue  chan ResetPasswordEmail
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher starts the worker. Call Close to drain and stop it.
func NewDispatcher(sender Sender, logger Logger) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan ResetPasswordEmail, defaultQueueSize),
		done:   make(chan struct{}),
	}

	go d.work()

	return d
}

// EnqueueResetPassword queues a reset message without blocking. When the
// queue is full the message is dropped and logged; the user can request
// another reset.
func (d *Dispatcher) EnqueueResetPassword(email, secretKey string) {
	d.Enqueue(ResetPasswordEmail{
		ID:        uuid.New(),
		Email:     email,
		SecretKey: secretKey,
	})
}

// Enqueue queues an already-built message without blocking.
func (d *Dispatcher) Enqueue(msg ResetPasswordEmail) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Error("notification queue full, dropping message",
			"id", msg.ID.String(),
			"email", msg.Email,
		)
	}
}

// Close stops accepting messages and blocks until the worker has drained
// whatever was already queued.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) work() {
	defer close(d.done)

	for msg := range d.queue {
		if err := d.sender.SendResetPassword(msg); err != nil {
			d.logger.Error("failed to deliver password reset",
				"id", msg.ID.String(),
				"email", msg.Email,
				"error", err,
			)
		}
	}
}
