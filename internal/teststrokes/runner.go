package teststrokes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adnan911/Perfect-Square/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete stroke test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting stroke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("attempts", config.NumAttempts),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	attempts, err := generateAttempts(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("attempt generation failed: %w", err)
	}

	if err := submitAttempts(ctx, config, attempts, stats); err != nil {
		return fmt.Errorf("attempt submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for attempts to be processed")
	time.Sleep(ProcessingWaitDelay)

	rankings, err := retrieveRankings(ctx, config, attempts, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}

	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	if err := verifyResults(config, attempts, rankings, leaderboard); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	if err := saveAttemptsToFile(ctx, config, attempts); err != nil {
		logger.Get().Warn(ctx, "failed to save attempts to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveAttemptsToFile saves the generated attempts to a JSON file.
func saveAttemptsToFile(ctx context.Context, config *Config, attempts []Attempt) error {
	if len(attempts) == 0 {
		return fmt.Errorf("no attempts to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_attempts_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, attempt := range attempts {
		jsonData, err := json.Marshal(attempt)
		if err != nil {
			return fmt.Errorf("failed to marshal attempt %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write attempt %d: %w", i, err)
		}

		if i < len(attempts)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "attempts saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, attemptsPerSecond float64

	if stats.AttemptsSubmitted > 0 {
		successRate = float64(stats.AttemptsSuccessful) / float64(stats.AttemptsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		attemptsPerSecond = float64(stats.AttemptsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("attemptsGenerated", stats.AttemptsGenerated),
		logger.Int("attemptsSubmitted", stats.AttemptsSubmitted),
		logger.Int("attemptsSuccessful", stats.AttemptsSuccessful),
		logger.Int("attemptsDuplicate", stats.AttemptsDuplicate),
		logger.Int("attemptsFailed", stats.AttemptsFailed),
		logger.Int("rankingsRetrieved", stats.RankingsRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("attemptsPerSecond", attemptsPerSecond))
}
