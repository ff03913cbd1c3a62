package telemetry

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pitbox/pitwall/internal/domain/model"
)

// Replay scanner buffer bounds. Snapshots are small but captures sometimes
// carry extra vendor fields.
const (
	replayInitialBuffer = 64 * 1024
	replayMaxLine       = 1024 * 1024
)

// ReplayReader replays a captured session from a JSONL file, one snapshot
// per line. Blank lines are skipped; a malformed line fails the replay so
// bad captures surface immediately.
type ReplayReader struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// NewReplayReader opens a JSONL capture for replay.
func NewReplayReader(path string) (*ReplayReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, replayInitialBuffer), replayMaxLine)

	return &ReplayReader{file: f, scanner: sc}, nil
}

// Next returns the next snapshot in the capture.
func (r *ReplayReader) Next(ctx context.Context) (model.Snapshot, error) {
	for {
		if err := ctx.Err(); err != nil {
			return model.Snapshot{}, err
		}

		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return model.Snapshot{}, fmt.Errorf("read replay line %d: %w", r.line+1, err)
			}
			return model.Snapshot{}, ErrEndOfSession
		}
		r.line++

		raw := bytes.TrimSpace(r.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var snap model.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return model.Snapshot{}, fmt.Errorf("%w: line %d: %w", ErrBadSnapshot, r.line, err)
		}
		return snap.Normalize(), nil
	}
}

// Close closes the underlying capture file.
func (r *ReplayReader) Close() error {
	return r.file.Close()
}
