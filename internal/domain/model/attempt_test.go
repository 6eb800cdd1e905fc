package model_test

import (
	"testing"
	"time"

	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	model "github.com/adnan911/Perfect-Square/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestAttempt(t *testing.T) {
	convey.Convey("Given an Attempt struct", t, func() {
		convey.Convey("When creating a new attempt", func() {
			ts := time.Now()
			attempt := model.Attempt{
				AttemptID: "attempt-123",
				PlayerID:  "player-456",
				Points:    []geom.Point{geom.Pt(10, 20), geom.Pt(11, 21)},
				TS:        ts,
			}

			convey.Convey("Then it should have the correct values", func() {
				convey.So(attempt.AttemptID, convey.ShouldEqual, "attempt-123")
				convey.So(attempt.PlayerID, convey.ShouldEqual, "player-456")
				convey.So(attempt.Points, convey.ShouldHaveLength, 2)
				convey.So(attempt.TS, convey.ShouldEqual, ts)
			})
		})

		convey.Convey("When creating an attempt with zero values", func() {
			attempt := model.Attempt{}

			convey.Convey("Then it should have default values", func() {
				convey.So(attempt.AttemptID, convey.ShouldEqual, "")
				convey.So(attempt.PlayerID, convey.ShouldEqual, "")
				convey.So(attempt.Points, convey.ShouldBeNil)
				convey.So(attempt.TS, convey.ShouldEqual, time.Time{})
			})
		})
	})
}

func TestPlayerScore(t *testing.T) {
	convey.Convey("Given a PlayerScore struct", t, func() {
		convey.Convey("When creating a new player score", func() {
			score := model.PlayerScore{
				PlayerID: "player-123",
				Score:    92,
				Metrics: analyzer.Metrics{
					Closure: 100, Sides: 88.5, Angles: 95, Straightness: 90,
				},
			}

			convey.Convey("Then it should carry the breakdown with the total", func() {
				convey.So(score.PlayerID, convey.ShouldEqual, "player-123")
				convey.So(score.Score, convey.ShouldEqual, 92)
				convey.So(score.Metrics.Sides, convey.ShouldEqual, 88.5)
			})
		})

		convey.Convey("When creating a player score with zero values", func() {
			score := model.PlayerScore{}

			convey.Convey("Then it should have default values", func() {
				convey.So(score.PlayerID, convey.ShouldEqual, "")
				convey.So(score.Score, convey.ShouldEqual, 0)
				convey.So(score.Metrics, convey.ShouldResemble, analyzer.Metrics{})
			})
		})
	})
}
