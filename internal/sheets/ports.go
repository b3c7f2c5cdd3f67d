package sheets

import (
	"context"
	"fmt"
)

// Ports for outbound spreadsheet adapters. The pipeline only ever appends
// statement rows and copies single summary cells, so the surface stays narrow
// enough to fake in memory.
type (
	// RowWriter appends statement rows to a monthly worksheet.
	RowWriter interface {
		// AppendRows adds rows at the end of the worksheet's data block.
		AppendRows(ctx context.Context, worksheet string, rows [][]any) error

		// ClearRows removes previously uploaded data from fromRow down,
		// so re-running a month replaces instead of duplicating.
		ClearRows(ctx context.Context, worksheet string, fromRow int) error
	}

	// CellReader reads a single cell value.
	CellReader interface {
		ReadCell(ctx context.Context, worksheet, addr string) (string, error)
	}

	// CellWriter writes a single cell value.
	CellWriter interface {
		WriteCell(ctx context.Context, worksheet, addr string, value any) error
	}
)

// DataStartRow is the first worksheet row holding statement data; rows above
// it hold headers and per-month summary formulas.
const DataStartRow = 7

// WriterError wraps any failure talking to the spreadsheet backend. A file
// whose upload fails with it stays unmarked and unarchived for retry.
type WriterError struct {
	Op        string
	Worksheet string
	Err       error
}

func (e *WriterError) Error() string {
	return fmt.Sprintf("sheet %s %s: %v", e.Worksheet, e.Op, e.Err)
}

func (e *WriterError) Unwrap() error { return e.Err }
