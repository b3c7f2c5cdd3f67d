// Package memory provides an in-memory spreadsheet fake for tests and the
// memory backend. It keeps rows and cells per worksheet and can be primed to
// fail, so pipeline error paths are testable without a real spreadsheet.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "github.com/theweak1/auto-finance/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	rows  map[string][][]any
	cells map[string]map[string]any

	// FailNextAppend makes the next AppendRows call fail once.
	FailNextAppend error
}

var (
	_ ports.RowWriter  = (*Store)(nil)
	_ ports.CellReader = (*Store)(nil)
	_ ports.CellWriter = (*Store)(nil)
)

func New() *Store {
	return &Store{
		rows:  make(map[string][][]any),
		cells: make(map[string]map[string]any),
	}
}

func (s *Store) AppendRows(_ context.Context, worksheet string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNextAppend != nil {
		err := s.FailNextAppend
		s.FailNextAppend = nil
		return &ports.WriterError{Op: "append", Worksheet: worksheet, Err: err}
	}
	s.rows[worksheet] = append(s.rows[worksheet], rows...)
	return nil
}

func (s *Store) ClearRows(_ context.Context, worksheet string, fromRow int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The fake keeps only the data block, so clearing from the data start row
	// drops everything for the worksheet.
	if fromRow <= ports.DataStartRow {
		s.rows[worksheet] = nil
	}
	return nil
}

func (s *Store) ReadCell(_ context.Context, worksheet, addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.cells[worksheet]
	if !ok {
		return "", nil
	}
	v, ok := ws[addr]
	if !ok {
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func (s *Store) WriteCell(_ context.Context, worksheet, addr string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cells[worksheet] == nil {
		s.cells[worksheet] = make(map[string]any)
	}
	s.cells[worksheet][addr] = value
	return nil
}

// Rows returns a copy of the rows stored for a worksheet.
func (s *Store) Rows(worksheet string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows[worksheet]...)
}

// Cell returns the raw value stored at a cell, or nil.
func (s *Store) Cell(worksheet, addr string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.cells[worksheet]
	if !ok {
		return nil
	}
	return ws[addr]
}
