// Package notify drains detected events off the queue and delivers them to a
// Notifier, decoupling announcement latency from the telemetry tick loop.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/pkg/logger"
	"github.com/pitbox/pitwall/pkg/metrics"
)

// Event abstracts what the consumer reads off the queue.
// Using the model.Event type for consistency.
type Event = model.Event

// Notifier delivers a single event to the driver or crew.
type Notifier interface {
	Announce(ctx context.Context, e Event) error
}

// Queue defines how the consumer receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Consumer processes events from the queue and announces them in order.
type Consumer struct {
	queue    Queue
	notifier Notifier
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewConsumer creates a consumer with configuration options.
func NewConsumer(queue Queue, notifier Notifier, opts ...Option) *Consumer {
	c := &Consumer{
		queue:    queue,
		notifier: notifier,
		name:     "announcer",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("announcer"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.name != "announcer" {
		c.logger = c.logger.Named(c.name)
	}

	return c
}

// Run starts the consumer loop until ctx is canceled or the queue closes.
func (c *Consumer) Run(ctx context.Context) {
	defer func() {
		close(c.done)
	}()

	eventChan := c.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			// Shutdown follows the queue close; announce everything still
			// buffered before stopping.
			c.drain(ctx, eventChan)
			return
		case event, ok := <-eventChan:
			if !ok {
				// Channel closed, consumer should stop
				return
			}

			if err := c.announce(ctx, event); err != nil {
				c.logger.Error(ctx, "error announcing event",
					logger.String("kind", event.Kind.String()),
					logger.Error(err),
				)
			}
		}
	}
}

// drain announces remaining events until the dequeue channel closes. The
// queue must already be closed, or this blocks until ctx ends.
func (c *Consumer) drain(ctx context.Context, eventChan <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := c.announce(ctx, event); err != nil {
				c.logger.Error(ctx, "error announcing event",
					logger.String("kind", event.Kind.String()),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the consumer.
func (c *Consumer) Shutdown(ctx context.Context) error {
	close(c.shutdown)

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		c.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// announce delivers a single event and records its latency.
func (c *Consumer) announce(ctx context.Context, event Event) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordAnnounceLatency(float64(latency))
	}()

	if err := c.notifier.Announce(ctx, event); err != nil {
		return fmt.Errorf("announce %s: %w", event.Kind, err)
	}
	return nil
}

// LogNotifier announces events through the structured logger. It is the
// default sink and doubles as the crew-chief console output.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a notifier backed by the global logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger.Get().Named("radio")}
}

// Announce logs the event at a level matching its priority.
func (n *LogNotifier) Announce(ctx context.Context, e Event) error {
	fields := []logger.Field{
		logger.String("kind", e.Kind.String()),
		logger.Int("priority", int(e.Priority)),
		logger.Int("lap", e.Lap),
	}
	switch e.Priority {
	case model.PriorityCritical, model.PriorityHigh:
		n.logger.Warn(ctx, e.Message, fields...)
	default:
		n.logger.Info(ctx, e.Message, fields...)
	}
	return nil
}
