package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theweak1/auto-finance/internal/ledger"
	"github.com/theweak1/auto-finance/internal/rules"
	sheetmem "github.com/theweak1/auto-finance/internal/sheets/memory"
	"github.com/theweak1/auto-finance/internal/summary"
)

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) PublishFileIngested(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

type fixture struct {
	inbox   string
	archive string
	store   *ledger.Memory
	sheet   *sheetmem.Store
	events  *eventRecorder
	pl      *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	engine, err := rules.NewEngine([]rules.Rule{
		{Match: rules.Match{NameContains: []string{"COFFEE"}}, Category: "Dining"},
	})
	require.NoError(t, err)

	fx := &fixture{
		inbox:   t.TempDir(),
		archive: t.TempDir(),
		store:   ledger.NewMemory(),
		sheet:   sheetmem.New(),
		events:  &eventRecorder{},
	}
	fx.pl = New(Params{
		InboxDir:   fx.inbox,
		ArchiveDir: fx.archive,
		FilePrefix: "BANK",
		Engine:     engine,
		Ledger:     fx.store,
		Writer:     fx.sheet,
		Yearly:     summary.New(fx.sheet, fx.sheet, "SUMMARY", "A19", "YEARLY SUMMARY", 6, 2024),
		Events:     fx.events,
		Now: func() time.Time {
			return time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
		},
	})
	return fx
}

func (fx *fixture) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(fx.inbox, name), []byte(content), 0644))
}

const goodCSV = "Date,Name,Category,Amount\n" +
	"2025-01-05,COFFEE SHOP,Uncategorized,4.50\n" +
	"2025-01-06,GROCERY STORE,Food,20.00\n"

func TestPipelineIngestsFile(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "BANK_march.csv", goodCSV)

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StateArchived, results[0].State)
	assert.Equal(t, "March", results[0].Worksheet)
	assert.Equal(t, 2, results[0].Rows)

	rows := fx.sheet.Rows("March")
	require.Len(t, rows, 2)
	// First row was categorized by the COFFEE rule; second kept its category.
	assert.Equal(t, "Dining", rows[0][2])
	assert.Equal(t, "Food", rows[1][2])

	processed, err := fx.store.IsProcessed(context.Background(), "BANK_march.csv")
	require.NoError(t, err)
	assert.True(t, processed)

	// File moved to <archive>/<year>/Entered_<name>.
	_, err = os.Stat(filepath.Join(fx.archive, "2025", "Entered_BANK_march.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(fx.inbox, "BANK_march.csv"))
	assert.True(t, os.IsNotExist(err))

	require.Len(t, fx.events.events, 1)
	assert.Equal(t, "BANK_march.csv", fx.events.events[0].Filename)
	assert.Equal(t, 2025, fx.events.events[0].Year)
	assert.NotEmpty(t, fx.events.events[0].RunID)
}

func TestPipelineIdempotent(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "BANK_march.csv", goodCSV)

	_, err := fx.pl.Run(context.Background())
	require.NoError(t, err)

	// Simulate the file reappearing in the inbox unchanged.
	fx.write(t, "BANK_march.csv", goodCSV)

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StateSkipped, results[0].State)

	// No duplicate rows from the second run.
	assert.Len(t, fx.sheet.Rows("March"), 2)
}

func TestPipelineFailureIsolation(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "BANK_april.csv", goodCSV)
	fx.write(t, "BANK_august.csv", "Date,Name,Category,Amount\nonly,three,cols\n")
	fx.write(t, "BANK_july.csv", goodCSV)

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Filename] = r
	}
	assert.Equal(t, StateArchived, byName["BANK_april.csv"].State)
	assert.Equal(t, StateArchived, byName["BANK_july.csv"].State)
	assert.Equal(t, StateParseFailed, byName["BANK_august.csv"].State)

	var perr *ParseError
	require.ErrorAs(t, byName["BANK_august.csv"].Err, &perr)

	// The bad file stays in the inbox, unmarked.
	_, err = os.Stat(filepath.Join(fx.inbox, "BANK_august.csv"))
	assert.NoError(t, err)
	processed, err := fx.store.IsProcessed(context.Background(), "BANK_august.csv")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestPipelineWriteFailureLeavesFileRetryable(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "BANK_march.csv", goodCSV)
	fx.sheet.FailNextAppend = errors.New("quota exceeded")

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StateWriteFailed, results[0].State)

	processed, err := fx.store.IsProcessed(context.Background(), "BANK_march.csv")
	require.NoError(t, err)
	assert.False(t, processed)
	_, err = os.Stat(filepath.Join(fx.inbox, "BANK_march.csv"))
	assert.NoError(t, err)
	assert.Empty(t, fx.events.events)

	// Next run retries and succeeds.
	results, err = fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StateArchived, results[0].State)
}

func TestPipelineLedgerFailureReported(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "BANK_march.csv", goodCSV)
	fx.store.FailNextMark = errors.New("disk full")

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StateWritten, results[0].State)

	var lerr *ledger.Error
	require.ErrorAs(t, results[0].Err, &lerr)

	// Data reached the sheet but the file stays in the inbox; the next run
	// will duplicate it, which is the documented trade-off.
	assert.Len(t, fx.sheet.Rows("March"), 2)
	_, err = os.Stat(filepath.Join(fx.inbox, "BANK_march.csv"))
	assert.NoError(t, err)
}

func TestPipelineDecemberBelongsToPreviousYear(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "BANK_december.csv", goodCSV)

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, StateArchived, results[0].State)

	_, err = os.Stat(filepath.Join(fx.archive, "2024", "Entered_BANK_december.csv"))
	assert.NoError(t, err)
}

func TestPipelineJanuaryUpdatesYearlySummary(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.sheet.WriteCell(context.Background(), "SUMMARY", "A19", "9876.54"))
	fx.write(t, "BANK_january.csv", goodCSV)

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, StateArchived, results[0].State)

	// January 2025 closes 2024: anchor year at base row 6.
	assert.Equal(t, 2024, fx.sheet.Cell("YEARLY SUMMARY", "A6"))
	assert.Equal(t, "9876.54", fx.sheet.Cell("YEARLY SUMMARY", "B6"))
}

func TestPipelineIgnoresConfiguredFiles(t *testing.T) {
	fx := newFixture(t)
	fx.pl.p.Ignored = func(name string) bool { return name == "BANK_march.csv" }
	fx.write(t, "BANK_march.csv", goodCSV)

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPipelineSkipsInvalidNames(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "notes.txt", "hello")
	fx.write(t, "BANK_notamonth.csv", goodCSV)
	fx.write(t, "OTHER_march.csv", goodCSV)

	results, err := fx.pl.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}
