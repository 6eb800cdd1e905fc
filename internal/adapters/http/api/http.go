// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/adnan911/Perfect-Square/internal/adapters/repository"
	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/dedupe"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	"github.com/adnan911/Perfect-Square/internal/domain/model"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Analyze scores a raw pointer path synchronously.
	Analyze(path []geom.Point) analyzer.Result

	// Enqueue pushes an attempt for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, a model.Attempt) bool

	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
	Rank(ctx context.Context, playerID string) (repository.Entry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	analyzeHandler     *AnalyzeHandler
	attemptsHandler    *AttemptsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		analyzeHandler:     NewAnalyzeHandler(deps),
		attemptsHandler:    NewAttemptsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/attempts", MetricsMiddleware(s.attemptsHandler.HandlePostAttempt, "attempts"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

// Entry is the wire shape of a leaderboard row.
type Entry struct {
	Rank       int         `json:"rank"`
	PlayerID   string      `json:"player_id"`
	Score      int         `json:"score"`
	Metrics    metricsWire `json:"metrics"`
	RecordID   string      `json:"record_id"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// metricsWire carries the sub-scores as rounded integers, the persistence
// contract shape.
type metricsWire struct {
	Closure      int `json:"closure"`
	Sides        int `json:"sides"`
	Angles       int `json:"angles"`
	Straightness int `json:"straightness"`
}

func toMetricsWire(m analyzer.Metrics) metricsWire {
	round := func(v float64) int { return int(v + 0.5) }
	return metricsWire{
		Closure:      round(m.Closure),
		Sides:        round(m.Sides),
		Angles:       round(m.Angles),
		Straightness: round(m.Straightness),
	}
}

func toEntry(e repository.Entry) Entry {
	return Entry{
		Rank:       e.Rank,
		PlayerID:   e.PlayerID,
		Score:      e.Score,
		Metrics:    toMetricsWire(e.Metrics),
		RecordID:   e.RecordID,
		RecordedAt: e.RecordedAt,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
