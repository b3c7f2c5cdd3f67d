package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theweak1/auto-finance/internal/rules"
)

// Error is a fatal configuration problem; the run aborts before any file is
// touched.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Rules is the on-disk rule document. Field names match the original
// config.json format.
type Rules struct {
	CategorizationRules []rules.Rule `json:"CATEGORIZATION_RULES"`
	IgnoreFiles         []string     `json:"IGNORE_FILES"`
}

// LoadRules reads and validates the rule document. Unknown fields fail fast
// rather than being silently ignored, so a typo in a rule key cannot turn the
// rule into a catch-all.
func LoadRules(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	var doc Rules
	if err := dec.Decode(&doc); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("decode rules: %w", err)}
	}

	for i, r := range doc.CategorizationRules {
		if err := r.Validate(); err != nil {
			return nil, &Error{Path: path, Err: fmt.Errorf("rule %d: %w", i, err)}
		}
	}

	return &doc, nil
}

// Ignored reports whether a filename is in the ignore set. Entries are exact
// names or glob patterns ("*.tmp").
func (r *Rules) Ignored(name string) bool {
	for _, entry := range r.IgnoreFiles {
		if entry == name {
			return true
		}
		if ok, err := filepath.Match(entry, name); err == nil && ok {
			return true
		}
	}
	return false
}
