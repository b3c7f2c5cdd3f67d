// Package summary copies the closed year's aggregate total from the monthly
// summary sheet into the yearly summary sheet. It runs after a January
// ingestion, when the previous year's figures are final.
package summary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/theweak1/auto-finance/internal/sheets"
)

type Updater struct {
	reader sheets.CellReader
	writer sheets.CellWriter

	summarySheet string
	summaryCell  string
	yearlySheet  string
	baseRow      int
	anchorYear   int
}

func New(reader sheets.CellReader, writer sheets.CellWriter, summarySheet, summaryCell, yearlySheet string, baseRow, anchorYear int) *Updater {
	return &Updater{
		reader:       reader,
		writer:       writer,
		summarySheet: summarySheet,
		summaryCell:  summaryCell,
		yearlySheet:  yearlySheet,
		baseRow:      baseRow,
		anchorYear:   anchorYear,
	}
}

// Update copies the aggregate cell into the yearly sheet row keyed by the
// closed year (statementYear - 1). The anchor year occupies the base row and
// later years follow below it.
func (u *Updater) Update(ctx context.Context, statementYear int) error {
	closedYear := statementYear - 1

	row := u.baseRow + (closedYear - u.anchorYear)
	if row < 1 {
		return fmt.Errorf("yearly summary row for %d would be %d, before the sheet start", closedYear, row)
	}

	total, err := u.reader.ReadCell(ctx, u.summarySheet, u.summaryCell)
	if err != nil {
		return fmt.Errorf("read %s!%s: %w", u.summarySheet, u.summaryCell, err)
	}

	if err := u.writer.WriteCell(ctx, u.yearlySheet, fmt.Sprintf("A%d", row), closedYear); err != nil {
		return fmt.Errorf("write year label: %w", err)
	}
	if err := u.writer.WriteCell(ctx, u.yearlySheet, fmt.Sprintf("B%d", row), total); err != nil {
		return fmt.Errorf("write year total: %w", err)
	}

	slog.InfoContext(ctx, "Updated yearly summary",
		"year", closedYear,
		"row", row,
		"total", total)
	return nil
}
