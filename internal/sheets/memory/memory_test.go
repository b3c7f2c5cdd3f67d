package memory

import (
	"context"
	"errors"
	"testing"

	ports "github.com/theweak1/auto-finance/internal/sheets"
)

func TestAppendAndClear(t *testing.T) {
	s := New()
	ctx := context.Background()

	rows := [][]any{
		{"2024-01-05", "COFFEE SHOP", "Dining", 4.50},
		{"2024-01-06", "GROCERY STORE", "Food", 20.00},
	}
	if err := s.AppendRows(ctx, "January", rows); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}
	if got := len(s.Rows("January")); got != 2 {
		t.Fatalf("got %d rows, want 2", got)
	}

	if err := s.ClearRows(ctx, "January", ports.DataStartRow); err != nil {
		t.Fatalf("ClearRows: %v", err)
	}
	if got := len(s.Rows("January")); got != 0 {
		t.Fatalf("got %d rows after clear, want 0", got)
	}
}

func TestFailNextAppend(t *testing.T) {
	s := New()
	s.FailNextAppend = errors.New("quota exceeded")

	err := s.AppendRows(context.Background(), "January", [][]any{{"a"}})
	var werr *ports.WriterError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WriterError, got %v", err)
	}

	// Failure is one-shot.
	if err := s.AppendRows(context.Background(), "January", [][]any{{"a"}}); err != nil {
		t.Fatalf("second append should succeed, got %v", err)
	}
}

func TestCells(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.WriteCell(ctx, "YEARLY SUMMARY", "A6", 2024); err != nil {
		t.Fatalf("WriteCell: %v", err)
	}
	got, err := s.ReadCell(ctx, "YEARLY SUMMARY", "A6")
	if err != nil {
		t.Fatalf("ReadCell: %v", err)
	}
	if got != "2024" {
		t.Fatalf("got %q, want 2024", got)
	}

	empty, err := s.ReadCell(ctx, "SUMMARY", "A19")
	if err != nil || empty != "" {
		t.Fatalf("empty cell: got %q, %v", empty, err)
	}
}
