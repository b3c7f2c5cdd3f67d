package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theweak1/auto-finance/internal/core"
)

// Statement CSV column layout: date, name, category, amount. Extra columns
// are ignored.
const (
	colDate     = 0
	colName     = 1
	colCategory = 2
	colAmount   = 3
	minColumns  = 4
)

// ParseError marks a statement file whose rows don't meet the column or
// amount format contract. It isolates to that file; the run continues.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s line %d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseStatement reads a bank statement CSV and returns its transactions.
// The first line is a header and is skipped.
func ParseStatement(r io.Reader, filename string) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{File: filename, Err: err}
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []core.Transaction
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < minColumns {
			return nil, &ParseError{File: filename, Line: line,
				Err: fmt.Errorf("got %d columns, need at least %d", len(rec), minColumns)}
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(rec[colAmount]))
		if err != nil {
			return nil, &ParseError{File: filename, Line: line,
				Err: fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)}
		}

		txns = append(txns, core.Transaction{
			Date:     strings.TrimSpace(rec[colDate]),
			Name:     strings.TrimSpace(rec[colName]),
			Category: strings.TrimSpace(rec[colCategory]),
			Amount:   amount,
		})
	}
	return txns, nil
}
