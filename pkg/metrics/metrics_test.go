package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should be created on its own registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotEqual, GetRegistry())
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordEventsFetched(3)

			Convey("Then metric names should carry the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_events_fetched_total")
			})
		})

		Convey("When the global manager is used", func() {
			So(Default(), ShouldNotBeNil)
			So(Default().Registry(), ShouldEqual, GetRegistry())
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a fresh manager", t, func() {
		m := NewManager()

		Convey("When recording a run", func() {
			m.RecordMatchesFetched(38)
			m.RecordEventsFetched(1000)
			m.RecordEventsFetched(500)
			m.RecordRequest("events", 12, nil)
			m.RecordRequest("events", 15, errors.New("boom"))
			m.UpdatePlayerEvents(120)
			m.UpdatePointsMapped(100)
			m.RecordRowDropped("missing")
			m.RecordRowDropped("missing")
			m.RecordRowDropped("too_short")
			m.UpdateCategoryPoints("defensive", 40)
			m.RecordFigureSaved("A", 120)
			m.RecordFigureSkipped("D2")

			Convey("Then the counters should reflect it", func() {
				So(testutil.ToFloat64(m.matchesFetched), ShouldEqual, 38)
				So(testutil.ToFloat64(m.eventsFetched), ShouldEqual, 1500)
				So(testutil.ToFloat64(m.requestErrors.WithLabelValues("events")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.playerEvents), ShouldEqual, 120)
				So(testutil.ToFloat64(m.pointsMapped), ShouldEqual, 100)
				So(testutil.ToFloat64(m.rowsDropped.WithLabelValues("missing")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.rowsDropped.WithLabelValues("too_short")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.categoryRows.WithLabelValues("defensive")), ShouldEqual, 40)
				So(testutil.ToFloat64(m.figuresSaved.WithLabelValues("A")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.figuresSkipped.WithLabelValues("D2")), ShouldEqual, 1)
			})
		})

		Convey("When writing a textfile", func() {
			m.RecordFigureSaved("E", 10)
			path := filepath.Join(t.TempDir(), "run.prom")
			err := m.WriteTextfile(path)

			Convey("Then it should contain the exposition", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(raw), `pitchmap_run_figures_saved_total{figure="E"} 1`), ShouldBeTrue)
			})
		})

		Convey("When writing into a missing directory", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "nope", "run.prom"))
			So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
		})
	})
}
