package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// File locations
	InboxDir   string
	ArchiveDir string
	RulesFile  string

	// Ledger
	LedgerDBPath string

	// Input naming
	FilePrefix string

	// Spreadsheet backend selection
	SheetBackend string

	// Writer
	WriteTimeout time.Duration

	// Yearly summary
	SummarySheet     string
	SummaryCell      string
	YearlySheet      string
	YearlyBaseRow    int
	YearlyAnchorYear int

	// AMQP (optional ingestion events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	ScanInterval time.Duration
}

func Load() *Config {
	return &Config{
		InboxDir:   getEnv("INBOX_DIR", "."),
		ArchiveDir: getEnv("ARCHIVE_DIR", "Completed"),
		RulesFile:  getEnv("RULES_FILE", "config.json"),

		LedgerDBPath: getEnv("LEDGER_DB_PATH", "./data/ledger.db"),

		FilePrefix: getEnv("FILE_PREFIX", "BANK"),

		SheetBackend: getEnv("SHEET_BACKEND", "sheets"),

		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 60*time.Second),

		SummarySheet:     getEnv("SUMMARY_SHEET", "SUMMARY"),
		SummaryCell:      getEnv("SUMMARY_CELL", "A19"),
		YearlySheet:      getEnv("YEARLY_SHEET", "YEARLY SUMMARY"),
		YearlyBaseRow:    getEnvInt("YEARLY_BASE_ROW", 6),
		YearlyAnchorYear: getEnvInt("YEARLY_ANCHOR_YEAR", 2024),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "auto-finance"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ingested_files"),

		ScanInterval: getEnvDuration("SCAN_INTERVAL", 5*time.Minute),
	}
}

// Validate validates the configuration and returns a fatal Error if invalid.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.FilePrefix) == "" {
		problems = append(problems, "file prefix cannot be empty")
	}
	if strings.ContainsAny(c.FilePrefix, "_/") {
		problems = append(problems, fmt.Sprintf("invalid file prefix %q: must not contain '_' or '/'", c.FilePrefix))
	}

	validBackends := []string{"memory", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.SheetBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		problems = append(problems, fmt.Sprintf("invalid sheet backend %q: must be one of %v", c.SheetBackend, validBackends))
	}

	if c.LedgerDBPath == "" {
		problems = append(problems, "ledger database path cannot be empty")
	}

	if c.WriteTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid write timeout %v: must be at least 1 second", c.WriteTimeout))
	}

	if c.YearlyBaseRow < 1 {
		problems = append(problems, fmt.Sprintf("invalid yearly base row %d: must be at least 1", c.YearlyBaseRow))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ScanInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid scan interval %v: must be at least 1 second", c.ScanInterval))
	}

	if len(problems) > 0 {
		return &Error{Err: fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
