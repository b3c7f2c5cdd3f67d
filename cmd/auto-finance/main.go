package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/theweak1/auto-finance/internal/commands"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
