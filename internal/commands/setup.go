package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/theweak1/auto-finance/internal/amqp"
	"github.com/theweak1/auto-finance/internal/config"
	"github.com/theweak1/auto-finance/internal/ingest"
	"github.com/theweak1/auto-finance/internal/ledger"
	"github.com/theweak1/auto-finance/internal/rules"
	"github.com/theweak1/auto-finance/internal/sheets"
	gsheet "github.com/theweak1/auto-finance/internal/sheets/google"
	sheetmem "github.com/theweak1/auto-finance/internal/sheets/memory"
	"github.com/theweak1/auto-finance/internal/summary"
)

// BuildPipeline wires a pipeline from configuration: rule engine, SQLite
// ledger, spreadsheet backend, yearly summary updater, and the optional AMQP
// event publisher. The returned cleanup closes everything that was opened.
func BuildPipeline(ctx context.Context, cfg *config.Config) (*ingest.Pipeline, func(), error) {
	doc, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, nil, err
	}

	engine, err := rules.NewEngine(doc.CategorizationRules)
	if err != nil {
		return nil, nil, &config.Error{Path: cfg.RulesFile, Err: err}
	}

	store, err := ledger.NewSQLiteStore(cfg.LedgerDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}

	var cleanups []func()
	cleanups = append(cleanups, func() { store.Close() })
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		writer sheets.RowWriter
		reader sheets.CellReader
		cells  sheets.CellWriter
	)
	switch cfg.SheetBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init Google Sheets client: %w", err)
		}
		writer, reader, cells = cli, cli, cli
		slog.InfoContext(ctx, "Initialized Google Sheets backend")
	default:
		mem := sheetmem.New()
		writer, reader, cells = mem, mem, mem
		slog.InfoContext(ctx, "Initialized memory backend")
	}

	var events ingest.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init AMQP client: %w", err)
		}
		cleanups = append(cleanups, func() { client.Close() })
		events = client
		slog.InfoContext(ctx, "AMQP ingestion events enabled",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	yearly := summary.New(reader, cells,
		cfg.SummarySheet, cfg.SummaryCell, cfg.YearlySheet,
		cfg.YearlyBaseRow, cfg.YearlyAnchorYear)

	pipeline := ingest.New(ingest.Params{
		InboxDir:     cfg.InboxDir,
		ArchiveDir:   cfg.ArchiveDir,
		FilePrefix:   cfg.FilePrefix,
		WriteTimeout: cfg.WriteTimeout,
		Ignored:      doc.Ignored,
		Engine:       engine,
		Ledger:       store,
		Writer:       writer,
		Yearly:       yearly,
		Events:       events,
	})

	return pipeline, cleanup, nil
}
