package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/adnan911/Perfect-Square/internal/domain/dedupe"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	"github.com/adnan911/Perfect-Square/internal/domain/model"
)

// AttemptDependencies defines what asynchronous attempt intake needs.
type AttemptDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, a model.Attempt) bool
}

// AttemptsHandler handles attempt submissions.
type AttemptsHandler struct {
	deps AttemptDependencies
}

// NewAttemptsHandler creates an attempts handler.
func NewAttemptsHandler(deps AttemptDependencies) *AttemptsHandler {
	return &AttemptsHandler{deps: deps}
}

// attemptRequest is the POST /attempts body.
type attemptRequest struct {
	AttemptID string       `json:"attempt_id"`
	PlayerID  string       `json:"player_id"`
	Points    []geom.Point `json:"points"`
	TS        string       `json:"ts"`
}

func (a attemptRequest) validate() error {
	switch {
	case strings.TrimSpace(a.AttemptID) == "":
		return errors.New("missing attempt_id")
	case strings.TrimSpace(a.PlayerID) == "":
		return errors.New("missing player_id")
	case len(a.Points) == 0:
		return errors.New("missing points")
	case strings.TrimSpace(a.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, a.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

// HandlePostAttempt handles POST /attempts requests: validate, dedupe,
// enqueue. Duplicates ack with 200; backpressure rolls the dedupe entry
// back and answers 429.
func (h *AttemptsHandler) HandlePostAttempt(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_attempt"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if h.deps.SeenAndRecord(r.Context(), req.AttemptID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	ts, _ := time.Parse(time.RFC3339, req.TS)
	attempt := model.Attempt{
		AttemptID: req.AttemptID,
		PlayerID:  req.PlayerID,
		Points:    req.Points,
		TS:        ts,
	}
	if ok := h.deps.Enqueue(r.Context(), attempt); !ok {
		h.deps.Unrecord(r.Context(), req.AttemptID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
