package analyzer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFeedbackThresholds(t *testing.T) {
	Convey("Feedback tiers match the threshold table exactly at the boundaries", t, func() {
		cases := map[int]string{
			100: FeedbackPerfect,
			95:  FeedbackPerfect,
			94:  FeedbackAlmost,
			85:  FeedbackAlmost,
			84:  FeedbackGood,
			70:  FeedbackGood,
			69:  FeedbackPracticing,
			0:   FeedbackPracticing,
		}
		for total, want := range cases {
			So(feedbackFor(total), ShouldEqual, want)
		}
	})
}

func TestClampScore(t *testing.T) {
	Convey("Scores clamp to [0,100]", t, func() {
		So(clampScore(-3), ShouldEqual, 0)
		So(clampScore(42.5), ShouldEqual, 42.5)
		So(clampScore(180), ShouldEqual, 100)
	})
}
