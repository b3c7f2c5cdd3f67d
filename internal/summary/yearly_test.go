package summary

import (
	"context"
	"testing"

	"github.com/theweak1/auto-finance/internal/sheets/memory"
)

func TestUpdateCopiesAggregateCell(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if err := store.WriteCell(ctx, "SUMMARY", "A19", "12345.67"); err != nil {
		t.Fatalf("seed summary: %v", err)
	}

	u := New(store, store, "SUMMARY", "A19", "YEARLY SUMMARY", 6, 2024)
	if err := u.Update(ctx, 2025); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Statement year 2025 closes 2024, which is the anchor year at the base row.
	if got := store.Cell("YEARLY SUMMARY", "A6"); got != 2024 {
		t.Fatalf("year label: got %v, want 2024", got)
	}
	if got := store.Cell("YEARLY SUMMARY", "B6"); got != "12345.67" {
		t.Fatalf("year total: got %v", got)
	}
}

func TestUpdateRowKeyedByYear(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	u := New(store, store, "SUMMARY", "A19", "YEARLY SUMMARY", 6, 2024)

	if err := u.Update(ctx, 2027); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := store.Cell("YEARLY SUMMARY", "A8"); got != 2026 {
		t.Fatalf("year 2026 should land on row 8, got %v at A8", got)
	}
}

func TestUpdateRejectsRowBeforeSheetStart(t *testing.T) {
	store := memory.New()
	u := New(store, store, "SUMMARY", "A19", "YEARLY SUMMARY", 2, 2024)

	if err := u.Update(context.Background(), 2015); err == nil {
		t.Fatal("expected error for row before sheet start")
	}
}
