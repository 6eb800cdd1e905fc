// Package repository defines the leaderboard store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
)

// Entry represents a leaderboard row. RecordID and RecordedAt identify the
// stored best-score record; they are assigned by the store on improvement.
type Entry struct {
	Rank       int
	PlayerID   string
	Score      int
	Metrics    analyzer.Metrics
	RecordID   string
	RecordedAt time.Time
}

// Store provides read/write access to the ranking state.
type Store interface {
	// UpdateBest keeps score for player if it beats the existing best.
	// Returns true when the store updated the record.
	UpdateBest(ctx context.Context, playerID string, score int) (bool, error)
	// UpdateBestWithMetrics additionally stores the metric breakdown when
	// the score improved.
	UpdateBestWithMetrics(ctx context.Context, playerID string, score int, m analyzer.Metrics) (bool, error)

	// Rank returns the current rank and best score for a player.
	// Returns ErrNotFound when the player is unknown.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of players tracked in the leaderboard.
	Count(ctx context.Context) int
}
