package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
)

// AnalyzeDependencies defines what the synchronous scoring endpoint needs.
type AnalyzeDependencies interface {
	Analyze(path []geom.Point) analyzer.Result
}

// AnalyzeHandler handles synchronous scoring requests.
type AnalyzeHandler struct {
	deps AnalyzeDependencies
}

// NewAnalyzeHandler creates an analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

// analyzeRequest is the POST /analyze body: a raw pointer path in device
// pixels. include_debug requests the corner/ideal-square geometry.
type analyzeRequest struct {
	Points       []geom.Point `json:"points"`
	IncludeDebug bool         `json:"include_debug"`
}

func (a analyzeRequest) validate() error {
	if len(a.Points) == 0 {
		return errors.New("missing points")
	}
	return nil
}

// scoreResponse is the wire shape of an analysis result.
type scoreResponse struct {
	Total    int            `json:"total"`
	Metrics  metricsWire    `json:"metrics"`
	Feedback string         `json:"feedback"`
	Debug    *debugGeometry `json:"debug,omitempty"`
}

// debugGeometry is in normalized coordinates; the presentation layer
// inverse-maps it to device space.
type debugGeometry struct {
	Corners     []geom.Point `json:"corners"`
	Center      geom.Point   `json:"center"`
	Radius      float64      `json:"radius"`
	IdealSquare []geom.Point `json:"ideal_square"`
}

func toScoreResponse(res analyzer.Result, includeDebug bool) scoreResponse {
	out := scoreResponse{
		Total:    res.Total,
		Metrics:  toMetricsWire(res.Metrics),
		Feedback: res.Feedback,
	}
	if includeDebug && res.Debug != nil {
		out.Debug = &debugGeometry{
			Corners:     res.Debug.Corners,
			Center:      res.Debug.Center,
			Radius:      res.Debug.Radius,
			IdealSquare: res.Debug.IdealSquare,
		}
	}
	return out
}

// HandleAnalyze handles POST /analyze requests: path in, ScoreResult out.
// A stroke that is too short is not an error; it yields the zero result.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res := h.deps.Analyze(req.Points)
	writeJSON(w, http.StatusOK, toScoreResponse(res, req.IncludeDebug))
}
