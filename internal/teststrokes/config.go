package teststrokes

import "time"

// Config holds configuration for the stroke test run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumAttempts int           // Number of attempts to generate
	TopN        int           // Number of top entries to fetch
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for generated attempts
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// Point is a single pointer sample in device coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Attempt represents a drawing attempt to be submitted.
type Attempt struct {
	AttemptID string  `json:"attempt_id"`
	PlayerID  string  `json:"player_id"`
	Points    []Point `json:"points"`
	TS        string  `json:"ts"`
	Shape     string  `json:"-"` // generation tier, for verification only
}

// Entry represents a leaderboard entry.
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
}

// AckResponse represents the response from attempt submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds test statistics.
type Stats struct {
	AttemptsGenerated  int
	AttemptsSubmitted  int
	AttemptsSuccessful int
	AttemptsDuplicate  int
	AttemptsFailed     int
	RankingsRetrieved  int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
