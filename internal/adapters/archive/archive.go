// Package archive persists scored attempts in SQLite as an append-only
// history. The leaderboard keeps only each player's best; the archive keeps
// every score with its metric breakdown.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
    id            TEXT PRIMARY KEY,
    player_id     TEXT NOT NULL,
    score         INTEGER NOT NULL,
    closure       REAL NOT NULL,
    sides         REAL NOT NULL,
    angles        REAL NOT NULL,
    straightness  REAL NOT NULL,
    created_at    TEXT NOT NULL
);
`

const scoresIndex = `
CREATE INDEX IF NOT EXISTS idx_scores_ranking ON scores(score DESC, created_at);
`

// Record is one archived score row.
type Record struct {
	ID        string
	PlayerID  string
	Score     int
	Metrics   analyzer.Metrics
	CreatedAt time.Time
}

// Archive is the SQLite-backed score history.
type Archive struct {
	db *sql.DB
}

// New opens (or creates) the archive at dsn and ensures the schema exists.
// Use ":memory:" for an ephemeral archive.
func New(dsn string) (*Archive, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// modernc sqlite serializes writes; a single conn avoids table locks.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	if _, err := db.Exec(scoresIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive index: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record appends one scored attempt and returns the stored row with its
// assigned identifier and timestamp.
func (a *Archive) Record(ctx context.Context, playerID string, score int, m analyzer.Metrics) (Record, error) {
	rec := Record{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Score:     score,
		Metrics:   m,
		CreatedAt: time.Now().UTC(),
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO scores
		(id, player_id, score, closure, sides, angles, straightness, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.PlayerID,
		rec.Score,
		m.Closure,
		m.Sides,
		m.Angles,
		m.Straightness,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		metrics.RecordArchiveError()
		return Record{}, fmt.Errorf("insert score: %w", err)
	}
	metrics.RecordArchiveInsert()
	return rec, nil
}

// TopN returns the n highest archived scores, best first; ties break on
// insertion time.
func (a *Archive) TopN(ctx context.Context, n int) ([]Record, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, player_id, score, closure, sides, angles, straightness, created_at
		FROM scores
		ORDER BY score DESC, created_at ASC
		LIMIT ?`, n)
	if err != nil {
		metrics.RecordArchiveError()
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// History returns a player's archived scores, newest first.
func (a *Archive) History(ctx context.Context, playerID string, limit int) ([]Record, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, player_id, score, closure, sides, angles, straightness, created_at
		FROM scores
		WHERE player_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, playerID, limit)
	if err != nil {
		metrics.RecordArchiveError()
		return nil, fmt.Errorf("query player history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of archived scores.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.PlayerID, &rec.Score,
			&rec.Metrics.Closure, &rec.Metrics.Sides,
			&rec.Metrics.Angles, &rec.Metrics.Straightness,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse score timestamp: %w", err)
		}
		rec.CreatedAt = ts
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}
	return out, nil
}
