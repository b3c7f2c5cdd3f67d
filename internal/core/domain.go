package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Transaction is one bank statement row. It is immutable once parsed;
	// categorization produces a new value instead of mutating in place.
	Transaction struct {
		Date     string
		Name     string
		Category string
		Amount   decimal.Decimal
	}
)

var (
	ErrEmptyDate     = errors.New("empty date")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyCategory = errors.New("empty category")
)

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// WithCategory returns a copy of the transaction with the given category.
func (t Transaction) WithCategory(category string) Transaction {
	t.Category = category
	return t
}

// Row converts the transaction to a spreadsheet row in column order
// date, name, category, amount.
func (t Transaction) Row() []any {
	amount, _ := t.Amount.Float64()
	return []any{t.Date, t.Name, t.Category, amount}
}

// ParseMonth matches a filename month token against English month names,
// case-insensitively. The boolean reports whether the token was a month.
func ParseMonth(token string) (time.Month, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()) == token {
			return m, true
		}
	}
	return 0, false
}

// StatementMonth extracts the month from a statement filename of the form
// <prefix>_<Month>.csv. The boolean reports whether the name fits the pattern.
func StatementMonth(filename, prefix string) (time.Month, bool) {
	rest, ok := strings.CutPrefix(filename, prefix+"_")
	if !ok {
		return 0, false
	}
	token, ok := strings.CutSuffix(rest, ".csv")
	if !ok {
		return 0, false
	}
	return ParseMonth(token)
}

// StatementYear attributes a statement month to a calendar year. Statements
// arrive the month after they close, so a December file processed in the new
// year belongs to the previous one.
func StatementYear(month time.Month, now time.Time) int {
	if month == time.December {
		return now.Year() - 1
	}
	return now.Year()
}
