package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/theweak1/auto-finance/internal/core"
)

// Candidate is a statement file in the inbox that matches the expected
// naming pattern and is not in the ignore set.
type Candidate struct {
	Name  string
	Path  string
	Month time.Month
}

// Discover scans the inbox directory for statement files named
// <prefix>_<Month>.csv. Ignored and mis-named files are skipped; the latter
// are logged so a typo'd filename doesn't silently sit in the inbox forever.
func Discover(inboxDir, prefix string, ignored func(string) bool) ([]Candidate, error) {
	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox dir: %w", err)
	}

	var candidates []Candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ignored != nil && ignored(name) {
			continue
		}
		month, ok := core.StatementMonth(name, prefix)
		if !ok {
			slog.Warn("Skipping file with invalid name format",
				"filename", name,
				"expected", prefix+"_<Month>.csv")
			continue
		}
		candidates = append(candidates, Candidate{
			Name:  name,
			Path:  filepath.Join(inboxDir, name),
			Month: month,
		})
	}
	return candidates, nil
}

// Archive moves a fully ingested file into the archive root, namespaced by
// statement year and renamed with an Entered_ prefix.
func Archive(path, archiveRoot string, year int, filename string) (string, error) {
	destDir := filepath.Join(archiveRoot, fmt.Sprint(year))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	dest := filepath.Join(destDir, "Entered_"+filename)
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("moving %s to archive: %w", filename, err)
	}
	return dest, nil
}
