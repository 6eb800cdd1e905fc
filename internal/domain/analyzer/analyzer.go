// Package analyzer implements the drawing-analysis engine: a pure,
// deterministic function from an ordered pointer-sample path to a 0-100
// squareness score with per-metric breakdown, feedback and optional debug
// geometry. It performs no I/O and retains no state between calls.
package analyzer

import (
	"math"

	"github.com/adnan911/Perfect-Square/internal/domain/geom"
)

// Default analysis configuration constants.
const (
	defaultMinSamples = 20

	// Corner detection.
	smoothHalfWindow = 5
	chordOffset      = 2
	edgeMargin       = 2
	cornerThreshold  = 0.3 // radians
	cornerCount      = 4

	// Metric scoring.
	closureThreshold     = 0.05
	closureScale         = 5
	sidesPenaltyScale    = 5
	straightPenaltyScale = 10
	fallbackDeviation    = 0.5
	rightAngle           = math.Pi / 2
	angleTolerance       = math.Pi / 4

	// Aggregation weights.
	weightAngles       = 0.35
	weightSides        = 0.30
	weightStraightness = 0.25
	weightClosure      = 0.10

	maxScore = 100
)

// Feedback tiers. The threshold boundaries are contract; the wording is a
// presentation choice.
const (
	FeedbackPerfect    = "Perfect Square"
	FeedbackAlmost     = "Almost Perfect"
	FeedbackGood       = "Good Attempt"
	FeedbackPracticing = "Keep Practicing"
	FeedbackTooShort   = "Too fast or too small, try again"
)

// Metrics holds the four independent sub-scores, each in [0,100].
type Metrics struct {
	Closure      float64 `json:"closure"`
	Sides        float64 `json:"sides"`
	Angles       float64 `json:"angles"`
	Straightness float64 `json:"straightness"`
}

// DebugGeometry carries the detected corners and the idealized reference
// square derived from them, in normalized coordinates. Purely informational;
// never affects scoring.
type DebugGeometry struct {
	Corners     []geom.Point `json:"corners"`
	Center      geom.Point   `json:"center"`
	Radius      float64      `json:"radius"`
	IdealSquare []geom.Point `json:"ideal_square"`
}

// Result is the sole output of an analysis pass. It is immutable once
// produced: consumed by the presentation layer and, metrics-only, by the
// persistence collaborator.
type Result struct {
	Total    int            `json:"total"`
	Metrics  Metrics        `json:"metrics"`
	Feedback string         `json:"feedback"`
	Debug    *DebugGeometry `json:"debug,omitempty"`
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithMinSamples sets the minimum number of path samples required for a
// non-zero result.
func WithMinSamples(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minSamples = n
		}
	}
}

// Analyzer scores pointer paths. Safe for concurrent use: Analyze reads
// configuration only.
type Analyzer struct {
	minSamples int
}

// New creates an analyzer with configuration options applied.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		minSamples: defaultMinSamples,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MinSamples reports the configured minimum path length.
func (a *Analyzer) MinSamples() int {
	return a.minSamples
}

// Analyze runs the full pipeline on a raw pointer path (device pixels):
// validation, normalization, corner detection, the four metric evaluators,
// weighted aggregation and debug geometry. It is total: every finite input
// yields a well-formed Result, never an error.
func (a *Analyzer) Analyze(path []geom.Point) Result {
	if len(path) < a.minSamples {
		return zeroResult()
	}

	norm, ok := normalize(path)
	if !ok {
		// All samples coincide; the stroke has no extent.
		return zeroResult()
	}

	corners := detectCorners(norm)

	m := Metrics{
		Closure:      scoreClosure(norm),
		Sides:        scoreSides(corners),
		Angles:       scoreAngles(corners),
		Straightness: scoreStraightness(norm, corners),
	}

	total := int(math.Round(m.Angles*weightAngles +
		m.Sides*weightSides +
		m.Straightness*weightStraightness +
		m.Closure*weightClosure))
	if total > maxScore {
		total = maxScore
	}

	return Result{
		Total:    total,
		Metrics:  m,
		Feedback: feedbackFor(total),
		Debug:    buildDebugGeometry(corners),
	}
}

func zeroResult() Result {
	return Result{Feedback: FeedbackTooShort}
}

// feedbackFor selects the feedback tier by descending threshold match.
func feedbackFor(total int) string {
	switch {
	case total >= 95:
		return FeedbackPerfect
	case total >= 85:
		return FeedbackAlmost
	case total >= 70:
		return FeedbackGood
	default:
		return FeedbackPracticing
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(maxScore, v))
}
