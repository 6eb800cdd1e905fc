package teststrokes

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/adnan911/Perfect-Square/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	attemptIDDivisor   = 10000
	shapeTypeDivisor   = 8
)

// Canvas layout for generated strokes.
const (
	canvasCenterX  = 540.0
	canvasCenterY  = 560.0
	shapeHalfSize  = 210.0
	samplesPerSide = 25
	circleSamples  = 90
)

// Jitter amplitudes per quality tier, as a fraction of the shape size.
const (
	cleanJitter  = 0.002
	wobblyJitter = 0.02
	sloppyJitter = 0.06
)

// Shape tier names, carried on generated attempts for verification.
const (
	shapeCleanSquare   = "clean_square"
	shapeWobblySquare  = "wobbly_square"
	shapeSloppySquare  = "sloppy_square"
	shapeRotatedSquare = "rotated_square"
	shapeRectangle     = "rectangle"
	shapeCircle        = "circle"
	shapeOpenSquare    = "open_square"
	shapeScribble      = "scribble"
)

// Shape tier cases for random selection.
const (
	caseCleanSquare = iota
	caseWobblySquare
	caseSloppySquare
	caseRotatedSquare
	caseRectangle
	caseCircle
	caseOpenSquare
	caseScribble
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateAttempts creates the specified number of attempts with unique player IDs.
func generateAttempts(ctx context.Context, config *Config, stats *Stats) ([]Attempt, error) {
	logger.Get().Info(ctx, "generating attempts with unique player IDs", logger.Int("numAttempts", config.NumAttempts))

	attempts := make([]Attempt, config.NumAttempts)

	playerIDs := make([]string, config.NumAttempts)
	for i := 0; i < config.NumAttempts; i++ {
		playerIDs[i] = uuid.New().String()
	}

	type attemptResult struct {
		index   int
		attempt Attempt
		err     error
	}

	resultChan := make(chan attemptResult, config.NumAttempts)

	workerCount := minInt(config.Workers, config.NumAttempts)
	attemptsPerWorker := config.NumAttempts / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * attemptsPerWorker
		end := start + attemptsPerWorker
		if worker == workerCount-1 {
			end = config.NumAttempts
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- attemptResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- attemptResult{index: i, attempt: generateSingleAttempt(i, playerIDs[i])}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumAttempts; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during attempt generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate attempt %d: %w", result.index, result.err)
			}
			attempts[result.index] = result.attempt
		}
	}

	stats.AttemptsGenerated = len(attempts)
	logger.Get().Info(ctx, "generated attempts successfully", logger.Int("count", len(attempts)))

	return attempts, nil
}

// generateSingleAttempt creates a single attempt with the given index and player ID.
func generateSingleAttempt(index int, playerID string) Attempt {
	points, shape := generateVariedStroke()

	randNum, _ := rand.Int(rand.Reader, big.NewInt(attemptIDDivisor))
	attemptID := "attempt_" + strconv.FormatInt(int64(index), 10) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.FormatInt(randNum.Int64(), 10)

	return Attempt{
		AttemptID: attemptID,
		PlayerID:  playerID,
		Points:    points,
		TS:        time.Now().UTC().Format(time.RFC3339),
		Shape:     shape,
	}
}

// generateVariedStroke picks a random quality tier and synthesizes a stroke
// for it, from near-perfect squares down to free scribbles.
func generateVariedStroke() ([]Point, string) {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(shapeTypeDivisor))
	switch randNum.Int64() {
	case caseCleanSquare:
		return squareStroke(0, cleanJitter, 1.0, true), shapeCleanSquare
	case caseWobblySquare:
		return squareStroke(0, wobblyJitter, 1.0, true), shapeWobblySquare
	case caseSloppySquare:
		return squareStroke(0, sloppyJitter, 1.0, true), shapeSloppySquare
	case caseRotatedSquare:
		return squareStroke(getRandomFloat()*math.Pi/2, wobblyJitter, 1.0, true), shapeRotatedSquare
	case caseRectangle:
		// Aspect ratio 1.3 to 2.5: perfect angles, unequal sides.
		return squareStroke(0, cleanJitter, 1.3+getRandomFloat()*1.2, true), shapeRectangle
	case caseCircle:
		return circleStroke(), shapeCircle
	case caseOpenSquare:
		return squareStroke(0, cleanJitter, 1.0, false), shapeOpenSquare
	case caseScribble:
		return scribbleStroke(), shapeScribble
	default:
		return scribbleStroke(), shapeScribble
	}
}

// squareStroke traces a quadrilateral with the given rotation, per-sample
// jitter, and horizontal aspect ratio. The stroke starts partway along the
// first side; closed strokes return to the starting point, open strokes stop
// a fifth of a side short.
func squareStroke(rotation, jitter, aspect float64, closed bool) []Point {
	corners := [4][2]float64{
		{-shapeHalfSize * aspect, -shapeHalfSize},
		{shapeHalfSize * aspect, -shapeHalfSize},
		{shapeHalfSize * aspect, shapeHalfSize},
		{-shapeHalfSize * aspect, shapeHalfSize},
	}

	var raw []Point
	for s := 0; s < 4; s++ {
		a, b := corners[s], corners[(s+1)%4]
		for i := 0; i < samplesPerSide; i++ {
			t := float64(i) / float64(samplesPerSide)
			x := a[0] + (b[0]-a[0])*t
			y := a[1] + (b[1]-a[1])*t
			raw = append(raw, rotateAndPlace(x, y, rotation, jitter))
		}
	}

	n := len(raw)
	offset := n / 8
	stroke := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		stroke = append(stroke, raw[(offset+i)%n])
	}
	if closed {
		stroke = append(stroke, stroke[0])
	} else {
		stroke = stroke[:n-samplesPerSide/5]
	}
	return stroke
}

// circleStroke traces a full circle, the canonical all-angles-wrong shape.
func circleStroke() []Point {
	stroke := make([]Point, 0, circleSamples+1)
	for i := 0; i <= circleSamples; i++ {
		theta := 2 * math.Pi * float64(i) / float64(circleSamples)
		stroke = append(stroke, Point{
			X: canvasCenterX + shapeHalfSize*math.Cos(theta),
			Y: canvasCenterY + shapeHalfSize*math.Sin(theta),
		})
	}
	return stroke
}

// scribbleStroke produces a bounded random walk.
func scribbleStroke() []Point {
	numPoints := 60
	stroke := make([]Point, 0, numPoints)
	x, y := canvasCenterX, canvasCenterY
	for i := 0; i < numPoints; i++ {
		x += (getRandomFloat() - 0.5) * 60
		y += (getRandomFloat() - 0.5) * 60
		x = math.Max(canvasCenterX-shapeHalfSize, math.Min(canvasCenterX+shapeHalfSize, x))
		y = math.Max(canvasCenterY-shapeHalfSize, math.Min(canvasCenterY+shapeHalfSize, y))
		stroke = append(stroke, Point{X: x, Y: y})
	}
	return stroke
}

func rotateAndPlace(x, y, rotation, jitter float64) Point {
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	rx := x*cos - y*sin
	ry := x*sin + y*cos
	amp := jitter * shapeHalfSize * 2
	return Point{
		X: canvasCenterX + rx + (getRandomFloat()-0.5)*amp,
		Y: canvasCenterY + ry + (getRandomFloat()-0.5)*amp,
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
