package analyzer

import "github.com/adnan911/Perfect-Square/internal/domain/geom"

// normalize recenters the path on its centroid and uniformly rescales it so
// the farthest sample sits at radius 0.5. Order and length are preserved.
// Returns ok=false when every sample coincides (zero extent).
func normalize(path []geom.Point) ([]geom.Point, bool) {
	n := len(path)

	var cx, cy float64
	for _, p := range path {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(n)
	cy /= float64(n)

	out := make([]geom.Point, n)
	maxDist := 0.0
	for i, p := range path {
		out[i] = geom.Pt(p.X-cx, p.Y-cy)
		if d := out[i].Sub(geom.Pt(0, 0)).Hypot(); d > maxDist {
			maxDist = d
		}
	}
	if maxDist == 0 {
		return nil, false
	}

	scale := 0.5 / maxDist
	for i := range out {
		out[i].X *= scale
		out[i].Y *= scale
	}
	return out, true
}

// smooth returns a moving-average copy of the path. The window is symmetric
// around each sample and shrinks near the ends so it never reaches past the
// path (no wrap, no phase shift). Used only for curvature estimation in the
// corner detector; metric evaluators read the unsmoothed path.
func smooth(path []geom.Point, halfWindow int) []geom.Point {
	n := len(path)
	out := make([]geom.Point, n)
	for i := range path {
		w := halfWindow
		if i < w {
			w = i
		}
		if n-1-i < w {
			w = n - 1 - i
		}
		var sx, sy float64
		for j := i - w; j <= i+w; j++ {
			sx += path[j].X
			sy += path[j].Y
		}
		c := float64(2*w + 1)
		out[i] = geom.Pt(sx/c, sy/c)
	}
	return out
}
