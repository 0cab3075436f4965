package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/okian/pitchmap/internal/adapters/render"
	"github.com/okian/pitchmap/internal/app"
	"github.com/okian/pitchmap/internal/domain/model"
	"github.com/okian/pitchmap/pkg/logger"
	"github.com/okian/pitchmap/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const (
	team   = "Leicester City"
	player = "N'Golo Kanté"
)

type fakeSource struct {
	matches []model.Match
	events  []model.Event
	err     error
	calls   int
}

func (f *fakeSource) FetchTeamEvents(_ context.Context, _ string, _, _ int) ([]model.Match, []model.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.matches, f.events, nil
}

type fakeRenderer struct {
	figures []render.Figure
	failOn  string
	err     error
}

func (f *fakeRenderer) Render(_ context.Context, fig render.Figure, dir string) (string, error) {
	if fig.ID == f.failOn {
		return "", f.err
	}
	f.figures = append(f.figures, fig)
	return filepath.Join(dir, fig.FileName), nil
}

func (f *fakeRenderer) byID(id string) (render.Figure, bool) {
	for _, fig := range f.figures {
		if fig.ID == id {
			return fig, true
		}
	}
	return render.Figure{}, false
}

func loc(x, y float64) json.RawMessage {
	b, _ := json.Marshal([]float64{x, y})
	return b
}

func ev(id, who, typ string, period int, location json.RawMessage) model.Event {
	e := model.Event{ID: id, MatchID: 1, Player: who, Team: team, Type: typ, Location: location}
	if period > 0 {
		e.Period = model.IntPtr(period)
	}
	return e
}

func fixture() *fakeSource {
	return &fakeSource{
		matches: []model.Match{{
			MatchID: 1, HomeTeam: team, AwayTeam: "Sunderland",
			CompetitionID: 2, SeasonID: 27,
			CompetitionName: "Premier League", SeasonName: "2015/2016",
		}},
		events: []model.Event{
			ev("1", player, "Pressure", 1, loc(30, 40)),
			ev("2", player, "Interception", 1, loc(35, 20)),
			ev("3", player, "Ball Recovery", 2, loc(60, 60)),
			ev("4", player, "Pass", 2, loc(70, 30)),
			ev("5", player, "Ball Receipt*", 1, loc(50, 50)),
			ev("6", player, "Pressure", 2, nil),
			ev("7", player, "Block", 1, json.RawMessage(`["a","b"]`)),
			ev("8", "Jamie Vardy", "Shot", 2, loc(110, 40)),
			ev("9", player, "Foul Committed", 1, loc(20, 20)),
		},
	}
}

func request(dir string) app.Request {
	return app.Request{Team: team, Player: player, CompetitionID: 2, SeasonID: 27, OutDir: dir}
}

func ids(report *app.Report) []string {
	out := make([]string, len(report.Figures))
	for i, f := range report.Figures {
		out[i] = f.ID
	}
	return out
}

func TestService_Run(t *testing.T) {
	Convey("Given a service over a fake source and renderer", t, func() {
		src := fixture()
		rnd := &fakeRenderer{}
		m := metrics.NewManager()
		svc := app.New(app.WithSource(src), app.WithRenderer(rnd), app.WithMetrics(m))
		ctx := context.Background()
		dir := t.TempDir()

		Convey("When the player has actions in both halves", func() {
			report, err := svc.Run(ctx, request(dir))

			Convey("Then all six figures are produced in order", func() {
				So(err, ShouldBeNil)
				So(ids(report), ShouldResemble, []string{"A", "B", "C", "D1", "D2", "E"})
				So(report.Skipped, ShouldBeEmpty)
				So(report.RunID, ShouldNotBeEmpty)

				path, ok := report.Path("C")
				So(ok, ShouldBeTrue)
				So(path, ShouldEqual, filepath.Join(dir, "C_defensive_kde_density.png"))
				_, ok = report.Path("Z")
				So(ok, ShouldBeFalse)
			})

			Convey("Then the counts follow each stage", func() {
				c := report.Counts
				So(c.Matches, ShouldEqual, 1)
				So(c.Events, ShouldEqual, 9)
				So(c.PlayerEvents, ShouldEqual, 8)
				So(c.Mapped, ShouldEqual, 6)
				So(c.Dropped, ShouldEqual, 2)
				So(c.Defensive, ShouldEqual, 3)
				So(c.OnBall, ShouldEqual, 2)
				So(c.Half1, ShouldEqual, 2)
				So(c.Half2, ShouldEqual, 1)
				So(report.MappedPercent, ShouldEqual, 75.0)
			})

			Convey("Then the dropped rows carry their reasons", func() {
				So(report.Dropped, ShouldResemble, []model.Dropped{
					{EventID: "6", Type: "Pressure", Reason: model.DropMissing},
					{EventID: "7", Type: "Block", Reason: model.DropNonNumeric},
				})
			})

			Convey("Then each figure gets its own subset", func() {
				a, _ := rnd.byID("A")
				b, _ := rnd.byID("B")
				d1, _ := rnd.byID("D1")
				d2, _ := rnd.byID("D2")
				So(len(a.Points), ShouldEqual, 3)
				So(len(b.Points), ShouldEqual, 2)
				So(len(d1.Points), ShouldEqual, 2)
				So(len(d2.Points), ShouldEqual, 1)
				So(a.Kind, ShouldEqual, render.KindCount)

				c, _ := rnd.byID("C")
				So(c.Kind, ShouldEqual, render.KindDensity)
				So(c.Width, ShouldEqual, 12.0)
				e, _ := rnd.byID("E")
				So(e.Kind, ShouldEqual, render.KindPoints)
				So(e.FileName, ShouldEqual, "E_defensive_raw_points.png")
			})

			Convey("Then subtitles name the team, competition, season and event types", func() {
				a, _ := rnd.byID("A")
				So(a.Subtitle, ShouldStartWith, "Leicester City | Premier League 2015/2016 | Data: StatsBomb open data")
				So(a.Subtitle, ShouldEndWith, "Events: Pressure, Ball Recovery, Interception, Block, Clearance")
				b, _ := rnd.byID("B")
				So(b.Subtitle, ShouldEndWith, "Events: Pass, Carry, Ball Receipt*, Dribble, Shot")
				So(a.Caption, ShouldContainSubstring, "Metric here is COUNT per zone.")
			})

			Convey("Then the run metrics are recorded", func() {
				n, err := testutil.GatherAndCount(m.Registry(), "pitchmap_run_figures_saved_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 6)
			})
		})

		Convey("When the player has no second-half defensive actions", func() {
			src.events = src.events[:2]
			report, err := svc.Run(ctx, request(dir))

			Convey("Then D2 is skipped and the rest are produced", func() {
				So(err, ShouldBeNil)
				So(ids(report), ShouldResemble, []string{"A", "B", "C", "D1", "E"})
				So(report.Skipped, ShouldResemble, []string{"D2"})
				n, err := testutil.GatherAndCount(m.Registry(), "pitchmap_run_figures_skipped_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When no event carries a period", func() {
			for i := range src.events {
				src.events[i].Period = nil
			}
			report, err := svc.Run(ctx, request(dir))

			Convey("Then both half figures are skipped", func() {
				So(err, ShouldBeNil)
				So(report.Skipped, ShouldResemble, []string{"D1", "D2"})
				So(report.Counts.Half1, ShouldEqual, 0)
				So(report.Counts.Half2, ShouldEqual, 0)
			})
		})

		Convey("When the source fails", func() {
			boom := errors.New("provider unreachable")
			src.err = boom
			_, err := svc.Run(ctx, request(dir))

			Convey("Then the error is propagated and nothing is rendered", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(rnd.figures, ShouldBeEmpty)
			})
		})

		Convey("When a figure fails to render", func() {
			rnd.failOn = "C"
			rnd.err = errors.New("too few points")
			_, err := svc.Run(ctx, request(dir))

			Convey("Then the run aborts at that figure", func() {
				So(errors.Is(err, rnd.err), ShouldBeTrue)
				So(len(rnd.figures), ShouldEqual, 2)
			})
		})

		Convey("When the request is incomplete", func() {
			_, err := svc.Run(ctx, app.Request{Team: team, OutDir: " "})

			Convey("Then ErrInvalidRequest names the missing fields", func() {
				So(errors.Is(err, app.ErrInvalidRequest), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "player")
				So(err.Error(), ShouldContainSubstring, "out dir")
				So(src.calls, ShouldEqual, 0)
			})
		})

		Convey("When the team played no matches", func() {
			src.matches = nil
			_, err := svc.Run(ctx, request(dir))

			Convey("Then subtitles fall back to the requested ids", func() {
				So(err, ShouldBeNil)
				a, _ := rnd.byID("A")
				So(a.Subtitle, ShouldStartWith, "Leicester City | Competition 2 Season 27 |")
			})
		})
	})
}

func TestService_Options(t *testing.T) {
	Convey("Given custom categories and data source label", t, func() {
		rnd := &fakeRenderer{}
		svc := app.New(
			app.WithSource(fixture()),
			app.WithRenderer(rnd),
			app.WithMetrics(metrics.NewManager()),
			app.WithCategories(app.Categories{OnBall: []string{"Foul Committed"}}),
			app.WithDataSourceLabel("local mirror"),
		)

		Convey("When running", func() {
			report, err := svc.Run(context.Background(), request(t.TempDir()))

			Convey("Then only the replaced set changes", func() {
				So(err, ShouldBeNil)
				So(report.Counts.OnBall, ShouldEqual, 1)
				So(report.Counts.Defensive, ShouldEqual, 3)
				b, _ := rnd.byID("B")
				So(b.Subtitle, ShouldContainSubstring, "Data: local mirror")
				So(b.Subtitle, ShouldEndWith, "Events: Foul Committed")
			})
		})
	})

	Convey("Default categories are the defensive and on-ball sets", t, func() {
		c := app.DefaultCategories()
		So(c.Defensive, ShouldResemble, []string{"Pressure", "Ball Recovery", "Interception", "Block", "Clearance"})
		So(c.OnBall, ShouldResemble, []string{"Pass", "Carry", "Ball Receipt*", "Dribble", "Shot"})
		So(app.FileNames, ShouldHaveLength, 6)
	})
}
