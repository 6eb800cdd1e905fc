package analyzer

import (
	"math"

	"github.com/adnan911/Perfect-Square/internal/domain/geom"
)

// scoreClosure scores how close the stroke came back to its start: the
// first→last gap in normalized units, full marks at zero gap, zero at
// 5x the closure threshold.
func scoreClosure(norm []geom.Point) float64 {
	gap := norm[0].Distance(norm[len(norm)-1])
	return clampScore(maxScore * (1 - gap/(closureThreshold*closureScale)))
}

// scoreSides scores side-length uniformity: population standard deviation of
// the four wrapped corner-to-corner distances relative to their mean.
func scoreSides(cs cornerSet) float64 {
	var lengths [cornerCount]float64
	sum := 0.0
	for i := 0; i < cornerCount; i++ {
		lengths[i] = cs.points[i].Distance(cs.points[(i+1)%cornerCount])
		sum += lengths[i]
	}
	mean := sum / cornerCount
	if mean <= 0 {
		return 0
	}

	variance := 0.0
	for _, l := range lengths {
		d := l - mean
		variance += d * d
	}
	variance /= cornerCount
	rel := math.Sqrt(variance) / mean
	return clampScore(maxScore * (1 - rel*sidesPenaltyScale))
}

// scoreAngles scores corner-angle fidelity: each interior angle (vectors from
// a corner to its two neighbors) compared to a right angle, zero credit at
// 45 degrees of error. Zero-length corner vectors contribute nothing.
func scoreAngles(cs cornerSet) float64 {
	total := 0.0
	for i := 0; i < cornerCount; i++ {
		c := cs.points[i]
		prev := cs.points[(i+cornerCount-1)%cornerCount]
		next := cs.points[(i+1)%cornerCount]

		v1 := prev.Sub(c)
		v2 := next.Sub(c)
		if v1.Hypot() == 0 || v2.Hypot() == 0 {
			continue
		}
		ang := v1.AngleBetween(v2)
		total += math.Max(0, 1-math.Abs(ang-rightAngle)/angleTolerance)
	}
	return total / cornerCount * maxScore
}

// scoreStraightness scores how closely the stroke hugs the four ideal side
// lines. For each side, the path samples between its two corner indices
// (wrapping past the path end) are projected onto the side direction; those
// landing within the side's span contribute their perpendicular distance.
// No counted samples at all falls back to a fixed deviation.
func scoreStraightness(norm []geom.Point, cs cornerSet) float64 {
	n := len(norm)
	totalDev := 0.0
	counted := 0

	for i := 0; i < cornerCount; i++ {
		a := cs.points[i]
		b := cs.points[(i+1)%cornerCount]
		side := b.Sub(a)
		sideLen := side.Hypot()
		if sideLen == 0 {
			continue
		}
		u := side.Normalize()

		start := cs.indices[i]
		end := cs.indices[(i+1)%cornerCount]
		for j := start; ; j = (j + 1) % n {
			rel := norm[j].Sub(a)
			if t := rel.Dot(u); t >= 0 && t <= sideLen {
				totalDev += math.Abs(rel.Cross(u))
				counted++
			}
			if j == end {
				break
			}
		}
	}

	avg := fallbackDeviation
	if counted > 0 {
		avg = totalDev / float64(counted)
	}
	return clampScore(maxScore * (1 - avg*straightPenaltyScale))
}

// buildDebugGeometry derives the idealized reference square from the
// detected corners: centroid, mean corner distance as radius, and an
// axis-aligned square in top-left, top-right, bottom-right, bottom-left
// order. Normalized coordinates; the presentation layer inverse-maps them.
func buildDebugGeometry(cs cornerSet) *DebugGeometry {
	var cx, cy float64
	for _, p := range cs.points {
		cx += p.X
		cy += p.Y
	}
	center := geom.Pt(cx/cornerCount, cy/cornerCount)

	radius := 0.0
	for _, p := range cs.points {
		radius += center.Distance(p)
	}
	radius /= cornerCount

	return &DebugGeometry{
		Corners: cs.points[:],
		Center:  center,
		Radius:  radius,
		IdealSquare: []geom.Point{
			geom.Pt(center.X-radius, center.Y-radius),
			geom.Pt(center.X+radius, center.Y-radius),
			geom.Pt(center.X+radius, center.Y+radius),
			geom.Pt(center.X-radius, center.Y+radius),
		},
	}
}
