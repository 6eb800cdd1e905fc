package geom

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPoint(t *testing.T) {
	Convey("Given two points", t, func() {
		a := Pt(1, 2)
		b := Pt(4, 6)

		Convey("Sub yields the displacement vector", func() {
			v := b.Sub(a)
			So(v.X, ShouldEqual, 3)
			So(v.Y, ShouldEqual, 4)
		})

		Convey("Distance is euclidean", func() {
			So(a.Distance(b), ShouldAlmostEqual, 5)
		})

		Convey("Lerp interpolates between them", func() {
			mid := a.Lerp(b, 0.5)
			So(mid.X, ShouldAlmostEqual, 2.5)
			So(mid.Y, ShouldAlmostEqual, 4)
			So(a.Lerp(b, 0), ShouldResemble, a)
			So(a.Lerp(b, 1), ShouldResemble, b)
		})

		Convey("Translate moves by a vector", func() {
			So(a.Translate(Vec(1, -1)), ShouldResemble, Pt(2, 1))
		})
	})
}

func TestVec2(t *testing.T) {
	Convey("Given vectors", t, func() {
		v := Vec(3, 4)

		Convey("Hypot returns the magnitude", func() {
			So(v.Hypot(), ShouldAlmostEqual, 5)
		})

		Convey("Normalize yields a unit vector", func() {
			u := v.Normalize()
			So(u.Hypot(), ShouldAlmostEqual, 1)
			So(u.X, ShouldAlmostEqual, 0.6)
			So(u.Y, ShouldAlmostEqual, 0.8)
		})

		Convey("Dot and Cross behave on perpendicular vectors", func() {
			w := Vec(-4, 3)
			So(v.Dot(w), ShouldAlmostEqual, 0)
			So(v.Cross(w), ShouldAlmostEqual, 25)
		})

		Convey("AngleBetween", func() {
			So(Vec(1, 0).AngleBetween(Vec(0, 1)), ShouldAlmostEqual, math.Pi/2)
			So(Vec(1, 0).AngleBetween(Vec(1, 0)), ShouldAlmostEqual, 0)
			So(Vec(1, 0).AngleBetween(Vec(-1, 0)), ShouldAlmostEqual, math.Pi)

			Convey("zero-length input yields 0 rather than NaN", func() {
				So(Vec(0, 0).AngleBetween(Vec(1, 0)), ShouldEqual, 0)
			})
		})
	})
}
