package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/service"
)

// Recorder receives one observation per message outcome.
type Recorder interface {
	RecordNotification(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordNotification(string) {}

// Sink is a Notifier whose queue can be drained and shut down.
type Sink interface {
	service.Notifier
	Flush(ctx context.Context) error
	Close() error
}

// envelope is either a message or a flush marker.
type envelope struct {
	done chan struct{}
	text string
}

// Async queues messages for a single background worker.
// A full queue drops the message rather than blocking the caller.
type Async struct {
	sender   Sender
	logger   *slog.Logger
	recorder Recorder
	queue    chan envelope
	wg       sync.WaitGroup
	retry    service.RetryOptions
	mu       sync.RWMutex
	closed   bool
}

// AsyncOption configures an Async sink.
type AsyncOption func(*Async)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) AsyncOption {
	return func(a *Async) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithRetry overrides the retry policy for failed sends.
func WithRetry(opts service.RetryOptions) AsyncOption {
	return func(a *Async) {
		a.retry = opts
	}
}

// NewAsync starts the worker. Close must be called to stop it.
func NewAsync(sender Sender, queueSize int, logger *slog.Logger, opts ...AsyncOption) *Async {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Async{
		sender:   sender,
		logger:   logger,
		recorder: nopRecorder{},
		queue:    make(chan envelope, queueSize),
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.wg.Add(1)
	go a.run()
	return a
}

// Notify enqueues text for delivery. It never blocks.
func (a *Async) Notify(_ context.Context, text string) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.logger.Warn("Notification dropped after close")
		a.recorder.RecordNotification("dropped")
		return
	}

	select {
	case a.queue <- envelope{text: text}:
	default:
		a.logger.Warn("Notification queue full, dropping message", "queue_size", cap(a.queue))
		a.recorder.RecordNotification("dropped")
	}
}

// Flush waits until every message queued before the call has been handled.
func (a *Async) Flush(ctx context.Context) error {
	done := make(chan struct{})

	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return nil
	}
	select {
	case a.queue <- envelope{done: done}:
		a.mu.RUnlock()
	case <-ctx.Done():
		a.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close delivers what is already queued and stops the worker. It is idempotent.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}

func (a *Async) run() {
	defer a.wg.Done()

	for env := range a.queue {
		if env.done != nil {
			close(env.done)
			continue
		}
		a.deliver(env.text)
	}
}

func (a *Async) deliver(text string) {
	ctx := context.Background()
	err := common.WithRetry(ctx, func() error {
		return a.sender.Send(ctx, text)
	}, a.retry)
	if err != nil {
		a.logger.Error("Failed to deliver notification", "error", err)
		a.recorder.RecordNotification("failed")
		return
	}
	a.recorder.RecordNotification("sent")
}
