// Package ledger tracks which statement files have already been ingested.
// A filename present in the ledger is never reprocessed.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/theweak1/auto-finance/internal/core"
)

// Store is the durable processed-file set. Implementations must survive
// process restarts; the in-memory one exists for tests.
type Store interface {
	IsProcessed(ctx context.Context, filename string) (bool, error)
	MarkProcessed(ctx context.Context, filename string) error
	Processed(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
}

// Error wraps a failed durable marker write. When it happens after a
// successful sheet append, the file's data is already in the sheet and may be
// duplicated on retry; callers log it loudly instead of halting the run.
type Error struct {
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Filename, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ResetIfYearComplete clears the ledger when every month of a statement year
// has been ingested and the next candidate file starts a new January. Without
// the reset, the new year's files would all be skipped as already processed.
func ResetIfYearComplete(ctx context.Context, store Store, prefix, nextFilename string) error {
	month, ok := core.StatementMonth(nextFilename, prefix)
	if !ok || month != time.January {
		return nil
	}

	processed, err := store.Processed(ctx)
	if err != nil {
		return fmt.Errorf("list processed files: %w", err)
	}

	seen := make(map[time.Month]bool)
	for _, name := range processed {
		if m, ok := core.StatementMonth(name, prefix); ok {
			seen[m] = true
		}
	}
	if len(seen) < 12 {
		return nil
	}

	slog.InfoContext(ctx, "All months processed, starting new year",
		"next_file", nextFilename,
		"processed", len(processed))
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}

// Memory is an in-memory Store for tests.
type Memory struct {
	names []string

	// FailNextMark makes the next MarkProcessed call fail once.
	FailNextMark error
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) IsProcessed(_ context.Context, filename string) (bool, error) {
	for _, n := range m.names {
		if n == filename {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) MarkProcessed(_ context.Context, filename string) error {
	if m.FailNextMark != nil {
		err := m.FailNextMark
		m.FailNextMark = nil
		return &Error{Filename: filename, Err: err}
	}
	for _, n := range m.names {
		if n == filename {
			return nil
		}
	}
	m.names = append(m.names, filename)
	return nil
}

func (m *Memory) Processed(_ context.Context) ([]string, error) {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.names = nil
	return nil
}
