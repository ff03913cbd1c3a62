package engine

import (
	"time"

	"github.com/pitbox/pitwall/internal/adapters/mq/queue"
	"github.com/pitbox/pitwall/internal/adapters/notify"
	"github.com/pitbox/pitwall/internal/adapters/overlay"
	"github.com/pitbox/pitwall/internal/adapters/session"
	"github.com/pitbox/pitwall/internal/domain/detector"
	"github.com/pitbox/pitwall/internal/domain/strategy"
	"github.com/pitbox/pitwall/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTickInterval sets the telemetry polling period.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

// WithQueueSize bounds the notification queue.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queueSize = size
		}
	}
}

// WithCalculator sets a preconfigured strategy calculator.
func WithCalculator(c *strategy.Calculator) Option {
	return func(e *Engine) {
		if c != nil {
			e.calc = c
		}
	}
}

// WithDetector sets a preconfigured event detector.
func WithDetector(d *detector.Detector) Option {
	return func(e *Engine) {
		if d != nil {
			e.det = d
		}
	}
}

// WithQueue replaces the default in-memory queue.
func WithQueue(q queue.Queue) Option {
	return func(e *Engine) {
		if q != nil {
			e.queue = q
		}
	}
}

// WithNotifier sets the announcement sink.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithSessionStore enables session logging.
func WithSessionStore(s *session.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithOverlayHub enables overlay broadcasting.
func WithOverlayHub(h *overlay.Hub) Option {
	return func(e *Engine) {
		e.hub = h
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger logger.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
