package teststrokes

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/adnan911/Perfect-Square/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "stroke_test_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the stroke test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Perfect Square Stroke Test Tool
===============================

A concurrent tool for load-testing the square-scoring service with synthetic
drawing attempts of varying quality.

Usage:
  go run cmd/strokegen/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -attempts int
        Number of attempts to generate and submit (default 1000)
  -top int
        Number of top entries to fetch from leaderboard (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated attempts (default: generated_attempts_TIMESTAMP.json)
  -log string
        Log file for test output (default: stroke_test_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/strokegen/main.go

  # Test with custom parameters
  go run cmd/strokegen/main.go -attempts 5000 -workers 16 -url http://localhost:8080

  # Test with verbose output
  go run cmd/strokegen/main.go -verbose -attempts 1000
`)
}
