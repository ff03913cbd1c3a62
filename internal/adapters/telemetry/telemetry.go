// Package telemetry defines the contract for sourcing telemetry snapshots.
//
// The engine polls a Reader once per tick. Implementations include a JSONL
// replay reader for captured sessions and a synthetic session generator for
// demos and load testing. A live sim adapter satisfies the same interface.
package telemetry

import (
	"context"

	"github.com/pitbox/pitwall/internal/domain/model"
)

// Reader produces one snapshot per call. Next blocks at most until ctx is
// done; it returns ErrEndOfSession when the source has no more data.
type Reader interface {
	// Next returns the latest snapshot from the source.
	Next(ctx context.Context) (model.Snapshot, error)

	// Close releases any resources held by the reader.
	Close() error
}
