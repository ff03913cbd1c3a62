package overlay

import (
	"github.com/pitbox/pitwall/pkg/logger"
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithClientBuffer sets the per-client send buffer size.
func WithClientBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.clientBuffer = size
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(logger logger.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}
