package analyzer_test

import (
	"fmt"
	"math"
	"testing"

	analyzer "github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	. "github.com/smartystreets/goconvey/convey"
)

// quadPath samples the perimeter of a quadrilateral at perSide points per
// side, starting mid-perimeter at the given offset so no sample coincides
// with a corner, optionally closing back to the first sample. transform maps
// the unit-space samples into device pixels.
func quadPath(corners [4]geom.Point, perSide, startOffset int, close bool, transform func(geom.Point) geom.Point) []geom.Point {
	total := 4 * perSide
	pts := make([]geom.Point, 0, total+1)
	for m := 0; m < total; m++ {
		idx := (m + startOffset) % total
		side := idx / perSide
		t := float64(idx%perSide) / float64(perSide)
		p := corners[side].Lerp(corners[(side+1)%4], t)
		pts = append(pts, transform(p))
	}
	if close {
		pts = append(pts, pts[0])
	}
	return pts
}

func deviceMap(p geom.Point) geom.Point {
	return geom.Pt(320+420*p.X, 340+420*p.Y)
}

func rotatedDeviceMap(angle float64) func(geom.Point) geom.Point {
	sin, cos := math.Sincos(angle)
	return func(p geom.Point) geom.Point {
		return geom.Pt(320+420*(p.X*cos-p.Y*sin), 340+420*(p.X*sin+p.Y*cos))
	}
}

var unitSquare = [4]geom.Point{
	geom.Pt(-0.5, -0.5), geom.Pt(0.5, -0.5), geom.Pt(0.5, 0.5), geom.Pt(-0.5, 0.5),
}

// wobbledCircle is a freehand-style circle: 36 samples with a five-lobed
// radius wobble so the curvature picks are stable rather than tie-broken on
// float noise.
func wobbledCircle() []geom.Point {
	pts := make([]geom.Point, 0, 36)
	for i := 0; i < 36; i++ {
		th := 2 * math.Pi * float64(i) / 36
		r := 120 * (1 + 0.05*math.Sin(5*th))
		pts = append(pts, geom.Pt(300+r*math.Cos(th), 300+r*math.Sin(th)))
	}
	return pts
}

func TestAnalyzePerfectSquare(t *testing.T) {
	Convey("Given a clean synthetic square path, 25 samples per side", t, func() {
		a := analyzer.New()
		path := quadPath(unitSquare, 25, 12, true, deviceMap)

		Convey("When analyzed", func() {
			res := a.Analyze(path)

			Convey("Then it scores a perfect square", func() {
				So(res.Total, ShouldBeGreaterThanOrEqualTo, 95)
				So(res.Feedback, ShouldEqual, analyzer.FeedbackPerfect)
				So(res.Metrics.Closure, ShouldAlmostEqual, 100, 0.5)
				So(res.Metrics.Sides, ShouldAlmostEqual, 100, 0.5)
				So(res.Metrics.Angles, ShouldAlmostEqual, 100, 0.5)
				So(res.Metrics.Straightness, ShouldAlmostEqual, 100, 0.5)
			})

			Convey("And it carries debug geometry", func() {
				So(res.Debug, ShouldNotBeNil)
				So(len(res.Debug.Corners), ShouldEqual, 4)
				So(len(res.Debug.IdealSquare), ShouldEqual, 4)
				So(res.Debug.Radius, ShouldBeGreaterThan, 0)

				Convey("The ideal square is axis-aligned around the center", func() {
					c, r := res.Debug.Center, res.Debug.Radius
					sq := res.Debug.IdealSquare
					So(sq[0].X, ShouldAlmostEqual, c.X-r)
					So(sq[0].Y, ShouldAlmostEqual, c.Y-r)
					So(sq[1].X, ShouldAlmostEqual, c.X+r)
					So(sq[1].Y, ShouldAlmostEqual, c.Y-r)
					So(sq[2].X, ShouldAlmostEqual, c.X+r)
					So(sq[2].Y, ShouldAlmostEqual, c.Y+r)
					So(sq[3].X, ShouldAlmostEqual, c.X-r)
					So(sq[3].Y, ShouldAlmostEqual, c.Y+r)
				})
			})
		})
	})
}

func TestAnalyzeRotationInvariance(t *testing.T) {
	Convey("Given the same square drawn at different rotations", t, func() {
		a := analyzer.New()
		base := a.Analyze(quadPath(unitSquare, 25, 12, true, deviceMap))

		for _, angle := range []float64{0.7, 1.1} {
			rotated := a.Analyze(quadPath(unitSquare, 25, 12, true, rotatedDeviceMap(angle)))

			Convey(fmt.Sprintf("Then rotation by %.1f rad changes the total by at most 2 points", angle), func() {
				So(rotated.Total, ShouldBeBetweenOrEqual, base.Total-2, base.Total+2)
			})
		}
	})
}

func TestAnalyzeDeterminism(t *testing.T) {
	Convey("Given any fixed path", t, func() {
		a := analyzer.New()
		path := wobbledCircle()

		Convey("Then repeated analysis yields identical results", func() {
			first := a.Analyze(path)
			second := a.Analyze(path)
			So(second, ShouldResemble, first)
		})
	})
}

func TestAnalyzeDegenerateInput(t *testing.T) {
	Convey("Given a too-short path", t, func() {
		a := analyzer.New()
		path := make([]geom.Point, 5)

		Convey("Then the result is the zero record with the short-input feedback", func() {
			res := a.Analyze(path)
			So(res.Total, ShouldEqual, 0)
			So(res.Metrics, ShouldResemble, analyzer.Metrics{})
			So(res.Feedback, ShouldEqual, analyzer.FeedbackTooShort)
			So(res.Debug, ShouldBeNil)
		})
	})

	Convey("Given a long path with zero extent", t, func() {
		a := analyzer.New()
		path := make([]geom.Point, 30)
		for i := range path {
			path[i] = geom.Pt(100, 100)
		}

		Convey("Then the result is still the zero record", func() {
			res := a.Analyze(path)
			So(res.Total, ShouldEqual, 0)
			So(res.Debug, ShouldBeNil)
		})
	})

	Convey("Given a custom minimum sample threshold", t, func() {
		a := analyzer.New(analyzer.WithMinSamples(50))
		So(a.MinSamples(), ShouldEqual, 50)

		Convey("Then a path below it is rejected even if geometrically fine", func() {
			res := a.Analyze(quadPath(unitSquare, 10, 5, true, deviceMap))
			So(res.Total, ShouldEqual, 0)
			So(res.Feedback, ShouldEqual, analyzer.FeedbackTooShort)
		})
	})
}

func TestAnalyzeClosureSensitivity(t *testing.T) {
	Convey("Given a square path whose final sample closes a shrinking gap", t, func() {
		a := analyzer.New()
		open := quadPath(unitSquare, 25, 12, false, deviceMap)
		first, last := open[0], open[len(open)-1]

		prev := -1.0
		for _, frac := range []float64{1.0, 0.6, 0.3, 0.0} {
			path := append(append([]geom.Point{}, open...), last.Lerp(first, 1-frac))
			res := a.Analyze(path)

			Convey(fmt.Sprintf("Then closure strictly increases at gap fraction %.1f", frac), func() {
				So(res.Metrics.Closure, ShouldBeGreaterThan, prev)
			})
			prev = res.Metrics.Closure
		}

		Convey("And a fully closed path reaches full closure", func() {
			path := append(append([]geom.Point{}, open...), first)
			So(a.Analyze(path).Metrics.Closure, ShouldAlmostEqual, 100)
		})
	})
}

func TestAnalyzeNonSquareShapes(t *testing.T) {
	Convey("Given a freehand circle", t, func() {
		a := analyzer.New()
		res := a.Analyze(wobbledCircle())

		Convey("Then angle fidelity is poor and the total is low", func() {
			So(res.Metrics.Angles, ShouldBeLessThan, 60)
			So(res.Total, ShouldBeLessThan, 70)
			So(res.Feedback, ShouldEqual, analyzer.FeedbackPracticing)
		})
	})

	Convey("Given a 2:1 rectangle", t, func() {
		a := analyzer.New()
		rect := [4]geom.Point{
			geom.Pt(-1.0, -0.5), geom.Pt(1.0, -0.5), geom.Pt(1.0, 0.5), geom.Pt(-1.0, 0.5),
		}
		res := a.Analyze(quadPath(rect, 25, 12, true, deviceMap))

		Convey("Then side uniformity collapses and the total stays below Good", func() {
			So(res.Metrics.Sides, ShouldBeLessThan, 20)
			So(res.Metrics.Angles, ShouldAlmostEqual, 100, 0.5)
			So(res.Total, ShouldBeLessThan, 70)
		})
	})

	Convey("Given a mildly uneven 1.2:1 rectangle", t, func() {
		a := analyzer.New()
		rect := [4]geom.Point{
			geom.Pt(-0.6, -0.5), geom.Pt(0.6, -0.5), geom.Pt(0.6, 0.5), geom.Pt(-0.6, 0.5),
		}
		res := a.Analyze(quadPath(rect, 25, 12, true, deviceMap))

		Convey("Then it lands in the Good Attempt tier", func() {
			So(res.Total, ShouldBeGreaterThanOrEqualTo, 70)
			So(res.Total, ShouldBeLessThan, 85)
			So(res.Feedback, ShouldEqual, analyzer.FeedbackGood)
		})
	})
}

func TestAnalyzeMetricBounds(t *testing.T) {
	Convey("Given assorted paths", t, func() {
		a := analyzer.New()
		paths := [][]geom.Point{
			quadPath(unitSquare, 25, 12, true, deviceMap),
			quadPath(unitSquare, 25, 12, false, deviceMap),
			wobbledCircle(),
		}

		Convey("Then every metric and the total stay within [0,100]", func() {
			for _, path := range paths {
				res := a.Analyze(path)
				So(res.Total, ShouldBeBetweenOrEqual, 0, 100)
				for _, v := range []float64{
					res.Metrics.Closure, res.Metrics.Sides,
					res.Metrics.Angles, res.Metrics.Straightness,
				} {
					So(v, ShouldBeBetweenOrEqual, 0, 100)
				}
			}
		})
	})
}
