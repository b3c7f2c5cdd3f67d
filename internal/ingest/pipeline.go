// Package ingest implements the statement file pipeline: discover inbox
// files, parse, categorize, upload to the spreadsheet, record in the ledger,
// and archive. Each file either reaches the archive or is left untouched for
// the next run; one bad file never blocks the others.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/theweak1/auto-finance/internal/core"
	"github.com/theweak1/auto-finance/internal/ledger"
	"github.com/theweak1/auto-finance/internal/rules"
	"github.com/theweak1/auto-finance/internal/sheets"
	"github.com/theweak1/auto-finance/internal/summary"
)

// FileState is the terminal state of one file in a pipeline run.
type FileState string

const (
	StateSkipped     FileState = "skipped"
	StateParseFailed FileState = "parse_failed"
	StateWriteFailed FileState = "write_failed"
	// StateWritten means rows reached the sheet but the ledger marker or the
	// archive move failed afterwards.
	StateWritten  FileState = "written"
	StateArchived FileState = "archived"
)

// Result reports what happened to one candidate file.
type Result struct {
	Filename  string
	Worksheet string
	State     FileState
	Rows      int
	Err       error
}

// Event describes a fully ingested file, published to interested consumers.
type Event struct {
	RunID     string
	Filename  string
	Worksheet string
	Year      int
	Rows      int
}

// EventPublisher receives an event for every archived file. Implementations
// are best-effort; publish failures don't affect the file's outcome.
type EventPublisher interface {
	PublishFileIngested(ctx context.Context, ev Event) error
}

type Params struct {
	InboxDir     string
	ArchiveDir   string
	FilePrefix   string
	WriteTimeout time.Duration

	Ignored func(name string) bool
	Engine  *rules.Engine
	Ledger  ledger.Store
	Writer  sheets.RowWriter
	Yearly  *summary.Updater // optional
	Events  EventPublisher   // optional

	Now func() time.Time
}

type Pipeline struct {
	p Params
}

func New(p Params) *Pipeline {
	if p.WriteTimeout <= 0 {
		p.WriteTimeout = 60 * time.Second
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Pipeline{p: p}
}

// Run executes one full pass over the inbox. It returns a per-file result
// list; the error is non-nil only when the inbox itself can't be read.
func (pl *Pipeline) Run(ctx context.Context) ([]Result, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	candidates, err := Discover(pl.p.InboxDir, pl.p.FilePrefix, pl.p.Ignored)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if len(candidates) == 0 {
		log.InfoContext(ctx, "No candidate files found", "inbox", pl.p.InboxDir)
		return nil, nil
	}

	var results []Result
	for _, cand := range candidates {
		if err := ledger.ResetIfYearComplete(ctx, pl.p.Ledger, pl.p.FilePrefix, cand.Name); err != nil {
			log.ErrorContext(ctx, "Year rollover check failed", "filename", cand.Name, "error", err)
		}

		processed, err := pl.p.Ledger.IsProcessed(ctx, cand.Name)
		if err != nil {
			log.ErrorContext(ctx, "Ledger lookup failed, skipping file to stay safe",
				"filename", cand.Name, "error", err)
			results = append(results, Result{Filename: cand.Name, State: StateSkipped, Err: err})
			continue
		}
		if processed {
			log.InfoContext(ctx, "Skipping already processed file", "filename", cand.Name)
			results = append(results, Result{Filename: cand.Name, State: StateSkipped})
			continue
		}

		res := pl.processFile(ctx, log, runID, cand)
		results = append(results, res)

		switch res.State {
		case StateArchived:
			log.InfoContext(ctx, "File ingested",
				"filename", res.Filename,
				"worksheet", res.Worksheet,
				"rows", res.Rows)
		default:
			log.ErrorContext(ctx, "File not ingested",
				"filename", res.Filename,
				"state", string(res.State),
				"error", res.Err)
		}
	}
	return results, nil
}

func (pl *Pipeline) processFile(ctx context.Context, log *slog.Logger, runID string, cand Candidate) Result {
	res := Result{Filename: cand.Name, Worksheet: cand.Month.String()}

	txns, err := pl.parseFile(cand)
	if err != nil {
		res.State = StateParseFailed
		res.Err = err
		return res
	}
	res.Rows = len(txns)

	rows := make([][]any, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, pl.p.Engine.Apply(t).Row())
	}

	year := core.StatementYear(cand.Month, pl.p.Now())

	// Replace any stale upload for this month, then append the whole file in
	// one call. Both run under the writer timeout; a timeout is a write
	// failure and the file is retried on the next run.
	writeCtx, cancel := context.WithTimeout(ctx, pl.p.WriteTimeout)
	defer cancel()

	if err := pl.p.Writer.ClearRows(writeCtx, res.Worksheet, sheets.DataStartRow); err != nil {
		res.State = StateWriteFailed
		res.Err = err
		return res
	}
	if err := pl.p.Writer.AppendRows(writeCtx, res.Worksheet, rows); err != nil {
		res.State = StateWriteFailed
		res.Err = err
		return res
	}

	// The year's first ingestion closes the previous year's books.
	if cand.Month == time.January && pl.p.Yearly != nil {
		if err := pl.p.Yearly.Update(ctx, year); err != nil {
			log.WarnContext(ctx, "Yearly summary update failed", "year", year, "error", err)
		}
	}

	// Mark before archiving. If the marker write fails the data is already in
	// the sheet and the file stays in the inbox, so the next run may duplicate
	// it; that window is logged loudly rather than hidden.
	if err := pl.p.Ledger.MarkProcessed(ctx, cand.Name); err != nil {
		log.ErrorContext(ctx, "Ledger marker write failed, data may be duplicated on retry",
			"filename", cand.Name, "error", err)
		res.State = StateWritten
		res.Err = err
		return res
	}

	dest, err := Archive(cand.Path, pl.p.ArchiveDir, year, cand.Name)
	if err != nil {
		log.ErrorContext(ctx, "Archive move failed", "filename", cand.Name, "error", err)
		res.State = StateWritten
		res.Err = err
		return res
	}
	log.InfoContext(ctx, "Archived file", "filename", cand.Name, "dest", dest)

	if pl.p.Events != nil {
		ev := Event{RunID: runID, Filename: cand.Name, Worksheet: res.Worksheet, Year: year, Rows: res.Rows}
		if err := pl.p.Events.PublishFileIngested(ctx, ev); err != nil {
			log.WarnContext(ctx, "Ingestion event publish failed", "filename", cand.Name, "error", err)
		}
	}

	res.State = StateArchived
	return res
}

func (pl *Pipeline) parseFile(cand Candidate) ([]core.Transaction, error) {
	f, err := os.Open(cand.Path)
	if err != nil {
		return nil, &ParseError{File: cand.Name, Err: err}
	}
	defer f.Close()
	return ParseStatement(f, cand.Name)
}
