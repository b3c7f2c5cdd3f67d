// Package rules implements the categorization rule engine. Rules are loaded
// once at startup, evaluated in configuration order, and the first match wins.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theweak1/auto-finance/internal/core"
)

type (
	// Match holds the configured conditions of a rule. An empty list means
	// the condition is not configured.
	Match struct {
		NameContains   []string          `json:"name_contains,omitempty"`
		CategoryEquals []string          `json:"category_equals,omitempty"`
		AmountEquals   []decimal.Decimal `json:"amount_equals,omitempty"`
	}

	// Rule maps a set of match conditions to a category label.
	Rule struct {
		Match    Match  `json:"match"`
		MatchAny bool   `json:"match_any,omitempty"`
		Category string `json:"category"`
	}
)

var ErrEmptyCategory = errors.New("rule has no category")

// Validate checks a rule is usable: a category label is required, and an
// OR-mode rule needs at least one configured condition or it can never match.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.MatchAny && r.Match.empty() {
		return fmt.Errorf("rule %q: match_any with no conditions never matches", r.Category)
	}
	return nil
}

func (m Match) empty() bool {
	return len(m.NameContains) == 0 && len(m.CategoryEquals) == 0 && len(m.AmountEquals) == 0
}

// Matches evaluates the rule against a transaction.
//
// String comparisons are case-insensitive: both sides are trimmed and
// lowercased. In AND mode every configured condition must hold and an
// unconfigured condition is vacuously satisfied, so a rule with no conditions
// matches everything. In OR mode at least one configured condition must hold,
// so a rule with no conditions never matches.
func (r Rule) Matches(t core.Transaction) bool {
	name := strings.ToLower(strings.TrimSpace(t.Name))
	category := strings.ToLower(strings.TrimSpace(t.Category))

	nameMatch := anyContains(name, r.Match.NameContains)
	catMatch := anyEquals(category, r.Match.CategoryEquals)
	amtMatch := anyAmountEquals(t.Amount, r.Match.AmountEquals)

	if r.MatchAny {
		return nameMatch == yes || catMatch == yes || amtMatch == yes
	}
	return nameMatch != no && catMatch != no && amtMatch != no
}

// tristate distinguishes an unconfigured condition from a failed one.
type tristate int

const (
	unset tristate = iota
	yes
	no
)

func anyContains(haystack string, subs []string) tristate {
	if len(subs) == 0 {
		return unset
	}
	for _, sub := range subs {
		if strings.Contains(haystack, strings.ToLower(strings.TrimSpace(sub))) {
			return yes
		}
	}
	return no
}

func anyEquals(value string, candidates []string) tristate {
	if len(candidates) == 0 {
		return unset
	}
	for _, c := range candidates {
		if value == strings.ToLower(strings.TrimSpace(c)) {
			return yes
		}
	}
	return no
}

func anyAmountEquals(amount decimal.Decimal, candidates []decimal.Decimal) tristate {
	if len(candidates) == 0 {
		return unset
	}
	for _, c := range candidates {
		if amount.Equal(c) {
			return yes
		}
	}
	return no
}

// Engine runs an ordered rule list against transactions.
type Engine struct {
	rules []Rule
}

// NewEngine validates every rule and returns an engine over them.
func NewEngine(rules []Rule) (*Engine, error) {
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return &Engine{rules: rules}, nil
}

// Categorize returns the category of the first matching rule in configuration
// order, or the transaction's own category when no rule matches.
func (e *Engine) Categorize(t core.Transaction) string {
	for _, r := range e.rules {
		if r.Matches(t) {
			return r.Category
		}
	}
	return t.Category
}

// Apply categorizes a transaction, returning a copy with the resolved category.
func (e *Engine) Apply(t core.Transaction) core.Transaction {
	return t.WithCategory(e.Categorize(t))
}
