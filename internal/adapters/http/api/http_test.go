package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "github.com/adnan911/Perfect-Square/internal/adapters/http/api"
	"github.com/adnan911/Perfect-Square/internal/adapters/repository"
	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	"github.com/adnan911/Perfect-Square/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps implements api.Dependencies for handler tests.
type mockDeps struct {
	analyzer *analyzer.Analyzer

	seen        map[string]bool
	enqueueOK   bool
	enqueued    []model.Attempt
	unrecorded  []string
	topEntries  []repository.Entry
	rankEntries map[string]repository.Entry
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		analyzer:    analyzer.New(),
		seen:        make(map[string]bool),
		enqueueOK:   true,
		rankEntries: make(map[string]repository.Entry),
	}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, id string) {
	delete(m.seen, id)
	m.unrecorded = append(m.unrecorded, id)
}

func (m *mockDeps) Size() int64 { return int64(len(m.seen)) }

func (m *mockDeps) Analyze(path []geom.Point) analyzer.Result {
	return m.analyzer.Analyze(path)
}

func (m *mockDeps) Enqueue(_ context.Context, a model.Attempt) bool {
	if !m.enqueueOK {
		return false
	}
	m.enqueued = append(m.enqueued, a)
	return true
}

func (m *mockDeps) TopN(_ context.Context, n int) ([]repository.Entry, error) {
	if n > len(m.topEntries) {
		n = len(m.topEntries)
	}
	return m.topEntries[:n], nil
}

func (m *mockDeps) Rank(_ context.Context, playerID string) (repository.Entry, error) {
	e, ok := m.rankEntries[playerID]
	if !ok {
		return repository.Entry{}, repository.ErrNotFound
	}
	return e, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"total_players": 2, "queue_size": 0}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, 100).Register(context.Background(), mux)
	return mux
}

// squarePath samples a clean unit square mapped into device pixels, starting
// mid-side and closing back to the first sample.
func squarePath() []geom.Point {
	corners := [4]geom.Point{
		geom.Pt(-0.5, -0.5), geom.Pt(0.5, -0.5), geom.Pt(0.5, 0.5), geom.Pt(-0.5, 0.5),
	}
	const perSide = 25
	total := 4 * perSide
	pts := make([]geom.Point, 0, total+1)
	for m := 0; m < total; m++ {
		idx := (m + 12) % total
		side := idx / perSide
		t := float64(idx%perSide) / perSide
		p := corners[side].Lerp(corners[(side+1)%4], t)
		pts = append(pts, geom.Pt(320+420*p.X, 340+420*p.Y))
	}
	return append(pts, pts[0])
}

func postJSON(mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		Convey("When posting a clean square with debug requested", func() {
			rec := postJSON(mux, "/analyze", map[string]any{
				"points":        squarePath(),
				"include_debug": true,
			})

			Convey("Then the full score result comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var res struct {
					Total    int            `json:"total"`
					Feedback string         `json:"feedback"`
					Metrics  map[string]int `json:"metrics"`
					Debug    *struct {
						Corners     []geom.Point `json:"corners"`
						IdealSquare []geom.Point `json:"ideal_square"`
					} `json:"debug"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &res), ShouldBeNil)
				So(res.Total, ShouldBeGreaterThanOrEqualTo, 95)
				So(res.Feedback, ShouldEqual, "Perfect Square")
				So(res.Metrics["closure"], ShouldEqual, 100)
				So(res.Debug, ShouldNotBeNil)
				So(res.Debug.Corners, ShouldHaveLength, 4)
				So(res.Debug.IdealSquare, ShouldHaveLength, 4)
			})
		})

		Convey("When posting without debug", func() {
			rec := postJSON(mux, "/analyze", map[string]any{"points": squarePath()})

			Convey("Then the debug field is omitted", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldNotContainSubstring, "ideal_square")
			})
		})

		Convey("When posting a too-short stroke", func() {
			rec := postJSON(mux, "/analyze", map[string]any{
				"points": []geom.Point{geom.Pt(1, 1), geom.Pt(2, 2)},
			})

			Convey("Then the zero result is returned, not an error", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var res struct {
					Total    int    `json:"total"`
					Feedback string `json:"feedback"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &res), ShouldBeNil)
				So(res.Total, ShouldEqual, 0)
				So(res.Feedback, ShouldEqual, analyzer.FeedbackTooShort)
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("{nope"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting an empty path", func() {
			rec := postJSON(mux, "/analyze", map[string]any{"points": []geom.Point{}})
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using the wrong method", func() {
			So(get(mux, "/analyze").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAttemptsEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		valid := map[string]any{
			"attempt_id": "attempt-1",
			"player_id":  "player-1",
			"points":     squarePath(),
			"ts":         time.Now().Format(time.RFC3339),
		}

		Convey("When submitting a valid attempt", func() {
			rec := postJSON(mux, "/attempts", valid)

			Convey("Then it is accepted and enqueued", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].AttemptID, ShouldEqual, "attempt-1")
				So(deps.enqueued[0].PlayerID, ShouldEqual, "player-1")
			})
		})

		Convey("When submitting the same attempt twice", func() {
			postJSON(mux, "/attempts", valid)
			rec := postJSON(mux, "/attempts", valid)

			Convey("Then the duplicate is acknowledged without enqueueing", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueOK = false
			rec := postJSON(mux, "/attempts", valid)

			Convey("Then backpressure is reported and the dedupe entry rolled back", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.unrecorded, ShouldContain, "attempt-1")

				deps.enqueueOK = true
				So(postJSON(mux, "/attempts", valid).Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When required fields are missing", func() {
			for _, drop := range []string{"attempt_id", "player_id", "points", "ts"} {
				body := map[string]any{}
				for k, v := range valid {
					if k != drop {
						body[k] = v
					}
				}
				Convey(fmt.Sprintf("Then omitting %s is rejected", drop), func() {
					So(postJSON(mux, "/attempts", body).Code, ShouldEqual, http.StatusBadRequest)
				})
			}
		})

		Convey("When the timestamp is not RFC3339", func() {
			body := map[string]any{}
			for k, v := range valid {
				body[k] = v
			}
			body["ts"] = "yesterday"
			So(postJSON(mux, "/attempts", body).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given a server with leaderboard entries", t, func() {
		deps := newMockDeps()
		deps.topEntries = []repository.Entry{
			{Rank: 1, PlayerID: "alice", Score: 97, RecordID: "r-1", RecordedAt: time.Now()},
			{Rank: 2, PlayerID: "bob", Score: 84, RecordID: "r-2", RecordedAt: time.Now()},
		}
		mux := newTestMux(deps)

		Convey("When requesting the top of the leaderboard", func() {
			rec := get(mux, "/leaderboard?limit=2")

			Convey("Then entries come back in rank order", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var entries []api.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].PlayerID, ShouldEqual, "alice")
				So(entries[0].Score, ShouldEqual, 97)
				So(entries[0].RecordID, ShouldEqual, "r-1")
			})
		})

		Convey("When the limit is missing or invalid", func() {
			So(get(mux, "/leaderboard").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/leaderboard?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/leaderboard?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the configured maximum", func() {
			So(get(mux, "/leaderboard?limit=1000").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRankEndpoint(t *testing.T) {
	Convey("Given a server that knows one player", t, func() {
		deps := newMockDeps()
		deps.rankEntries["alice"] = repository.Entry{
			Rank: 1, PlayerID: "alice", Score: 97,
			Metrics:  analyzer.Metrics{Closure: 100, Sides: 95.2, Angles: 98, Straightness: 96},
			RecordID: "r-1", RecordedAt: time.Now(),
		}
		mux := newTestMux(deps)

		Convey("When requesting a known player", func() {
			rec := get(mux, "/rank/alice")

			Convey("Then the entry is returned with rounded metrics", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var entry api.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &entry), ShouldBeNil)
				So(entry.PlayerID, ShouldEqual, "alice")
				So(entry.Rank, ShouldEqual, 1)
			})
		})

		Convey("When requesting an unknown player", func() {
			So(get(mux, "/rank/nobody").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the player id is malformed", func() {
			So(get(mux, "/rank/").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/rank/a/b").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux := newTestMux(newMockDeps())

		Convey("When requesting stats", func() {
			rec := get(mux, "/stats")

			Convey("Then a JSON document is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var stats map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats, ShouldContainKey, "total_players")
			})
		})
	})
}
