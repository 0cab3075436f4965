package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pitchmap/internal/app"
	"github.com/okian/pitchmap/internal/cli"
	"github.com/okian/pitchmap/internal/config"
	"github.com/okian/pitchmap/pkg/logger"
	"github.com/okian/pitchmap/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeRunner struct {
	got    *app.Request
	report *app.Report
	err    error
}

func (f *fakeRunner) Run(_ context.Context, req app.Request) (*app.Report, error) {
	f.got = &req
	return f.report, f.err
}

type harness struct {
	out    bytes.Buffer
	runner *fakeRunner
	cfg    *config.Config
	m      *metrics.Manager
}

func newHarness() *harness {
	h := &harness{
		runner: &fakeRunner{report: &app.Report{
			Figures: []app.FigureResult{
				{ID: "A", Path: "out/A_defensive_count_heatmap.png"},
				{ID: "E", Path: "out/E_defensive_raw_points.png"},
			},
			Skipped:       []string{"D2"},
			Counts:        app.Counts{PlayerEvents: 10, Mapped: 8, Dropped: 2},
			MappedPercent: 80,
		}},
		m: metrics.NewManager(),
	}
	return h
}

func (h *harness) execute(args ...string) error {
	cmd := cli.NewRootCommand(
		cli.WithOutput(&h.out),
		cli.WithMetrics(h.m),
		cli.WithFactory(func(cfg *config.Config, _ *metrics.Manager) cli.Runner {
			h.cfg = cfg
			return h.runner
		}),
	)
	cmd.SetArgs(args)
	cmd.SetOut(&h.out)
	cmd.SetErr(&h.out)
	return cmd.ExecuteContext(context.Background())
}

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PITCHMAP_CONFIG", "PITCHMAP_OUT_DIR", "PITCHMAP_BINS_X", "PITCHMAP_BINS_Y",
		"PITCHMAP_COMPETITION_ID", "PITCHMAP_SEASON_ID", "PITCHMAP_METRICS_FILE", "PITCHMAP_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command with a fake pipeline", t, func() {
		clearEnv(t)
		h := newHarness()

		convey.Convey("When team and player are missing", func() {
			err := h.execute()

			convey.Convey("Then it fails before running anything", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "required flag")
				convey.So(h.runner.got, convey.ShouldBeNil)
			})
		})

		convey.Convey("When only the required flags are given", func() {
			err := h.execute("--team", "Leicester City", "--player", "N'Golo Kanté")

			convey.Convey("Then the defaults reach the pipeline", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(*h.runner.got, convey.ShouldResemble, app.Request{
					Team: "Leicester City", Player: "N'Golo Kanté",
					CompetitionID: 2, SeasonID: 27, OutDir: "output/kante_maps",
				})
				convey.So(h.cfg.BinsX, convey.ShouldEqual, 25)
				convey.So(h.cfg.BinsY, convey.ShouldEqual, 18)
			})

			convey.Convey("Then the listing and summary are printed", func() {
				out := h.out.String()
				convey.So(out, convey.ShouldContainSubstring, "Finished. Saved figures:")
				convey.So(out, convey.ShouldContainSubstring, "  A: out/A_defensive_count_heatmap.png")
				convey.So(out, convey.ShouldContainSubstring, "  D2: skipped")
				convey.So(out, convey.ShouldContainSubstring, "Mapped events: 8/10 (80.0%), dropped 2")
			})
		})

		convey.Convey("When every flag is set", func() {
			err := h.execute("--team", "Arsenal", "--player", "Santi Cazorla",
				"--competition-id", "11", "--season-id", "4", "--out-dir", "maps",
				"--bins-x", "12", "--bins-y", "8")

			convey.Convey("Then flags override the configuration", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(h.runner.got.CompetitionID, convey.ShouldEqual, 11)
				convey.So(h.runner.got.SeasonID, convey.ShouldEqual, 4)
				convey.So(h.runner.got.OutDir, convey.ShouldEqual, "maps")
				convey.So(h.cfg.BinsX, convey.ShouldEqual, 12)
				convey.So(h.cfg.BinsY, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When a config file is given and flags are left alone", func() {
			path := filepath.Join(t.TempDir(), "pitchmap.yaml")
			convey.So(os.WriteFile(path, []byte("out_dir: from-file\nbins_x: 40\n"), 0o600), convey.ShouldBeNil)
			err := h.execute("--team", "Leicester City", "--player", "N'Golo Kanté", "--config", path, "--bins-x", "30")

			convey.Convey("Then the file wins over defaults and set flags win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(h.runner.got.OutDir, convey.ShouldEqual, "from-file")
				convey.So(h.cfg.BinsX, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When a flag makes the configuration invalid", func() {
			err := h.execute("--team", "Leicester City", "--player", "N'Golo Kanté", "--bins-y", "0")

			convey.Convey("Then ErrInvalidConfig is returned and nothing runs", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(h.runner.got, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the environment is invalid but a flag corrects it", func() {
			t.Setenv("PITCHMAP_BINS_X", "0")
			err := h.execute("--team", "Leicester City", "--player", "N'Golo Kanté", "--bins-x", "25")

			convey.Convey("Then the flag wins and the pipeline runs", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(h.runner.got, convey.ShouldNotBeNil)
				convey.So(h.cfg.BinsX, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When the environment is invalid and no flag corrects it", func() {
			t.Setenv("PITCHMAP_BINS_X", "0")
			err := h.execute("--team", "Leicester City", "--player", "N'Golo Kanté")

			convey.Convey("Then ErrInvalidConfig is returned and nothing runs", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(h.runner.got, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the pipeline fails with a metrics file configured", func() {
			metricsPath := filepath.Join(t.TempDir(), "run.prom")
			t.Setenv("PITCHMAP_METRICS_FILE", metricsPath)
			h.runner.err = errors.New("provider unreachable")
			h.m.RecordMatchesFetched(3)
			err := h.execute("--team", "Leicester City", "--player", "N'Golo Kanté")

			convey.Convey("Then the error is returned and metrics are still written", func() {
				convey.So(errors.Is(err, h.runner.err), convey.ShouldBeTrue)
				data, readErr := os.ReadFile(metricsPath)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldContainSubstring, "pitchmap_run_matches_fetched_total 3")
				convey.So(h.out.String(), convey.ShouldNotContainSubstring, "Finished.")
			})
		})
	})
}

func TestSampleDataCommand(t *testing.T) {
	convey.Convey("Given the sample-data subcommand", t, func() {
		clearEnv(t)
		h := newHarness()
		dir := t.TempDir()

		convey.Convey("When run with a small tree", func() {
			err := h.execute("sample-data", "--dir", dir, "--matches", "2", "--events", "100")

			convey.Convey("Then the tree is written without the required root flags", func() {
				convey.So(err, convey.ShouldBeNil)
				_, statErr := os.Stat(filepath.Join(dir, "matches", "2", "27.json"))
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(h.out.String(), convey.ShouldContainSubstring, "Wrote 3 matches (2 for Leicester City)")
				convey.So(h.runner.got, convey.ShouldBeNil)
			})
		})
	})
}
