package detector_test

import (
	"testing"

	"github.com/pitbox/pitwall/internal/domain/detector"
	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
	"github.com/smartystreets/goconvey/convey"
)

func paceMetrics(p strategy.Pace, delta float64) strategy.Metrics {
	return strategy.Metrics{Pace: p, PaceDelta: delta}
}

func TestDetector_PaceTrend(t *testing.T) {
	convey.Convey("Given a detector observing the pace trend", t, func() {
		d := detector.New()
		st := detector.NewState()

		snap := raceSnap(8, 4)

		convey.Convey("When the trend flips to dropping", func() {
			d.Detect(at(0), snap, paceMetrics(strategy.PaceStable, 0), st)
			events := d.Detect(at(1), snap, paceMetrics(strategy.PaceDropping, 0.8), st)
			repeat := d.Detect(at(2), snap, paceMetrics(strategy.PaceDropping, 0.9), st)

			convey.Convey("Then only the transition fires", func() {
				convey.So(kinds(events), convey.ShouldResemble, []model.Kind{model.KindPaceDropping})
				convey.So(events[0].Priority, convey.ShouldEqual, model.PriorityMedium)
				convey.So(events[0].Payload.PaceDelta, convey.ShouldAlmostEqual, 0.8, 0.001)
				convey.So(repeat, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the trend recovers to stable", func() {
			d.Detect(at(0), snap, paceMetrics(strategy.PaceDropping, 0.8), st)
			events := d.Detect(at(1), snap, paceMetrics(strategy.PaceStable, 0), st)

			convey.Convey("Then the recovery is silent", func() {
				convey.So(events, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the trend flips to improving", func() {
			events := d.Detect(at(0), snap, paceMetrics(strategy.PaceImproving, -0.4), st)

			convey.Convey("Then a low-priority improvement fires", func() {
				convey.So(kinds(events), convey.ShouldResemble, []model.Kind{model.KindPaceImproving})
				convey.So(events[0].Priority, convey.ShouldEqual, model.PriorityLow)
			})
		})
	})
}

func TestDetector_PersonalBest(t *testing.T) {
	convey.Convey("Given a detector tracking the best lap", t, func() {
		d := detector.New()
		st := detector.NewState()
		var m strategy.Metrics

		bestSnap := func(best float64) model.Snapshot {
			snap := raceSnap(8, 4)
			snap.BestLapTime = best
			return snap
		}

		convey.Convey("When the best lap improves", func() {
			d.Detect(at(0), bestSnap(92.0), m, st)
			events := d.Detect(at(1), bestSnap(91.456), m, st)
			repeat := d.Detect(at(2), bestSnap(91.456), m, st)

			convey.Convey("Then one personal best fires with the time", func() {
				convey.So(kinds(events), convey.ShouldResemble, []model.Kind{model.KindPersonalBest})
				convey.So(events[0].Message, convey.ShouldEqual, "Personal best! 91.456")
				convey.So(events[0].Payload.LapTime, convey.ShouldAlmostEqual, 91.456, 0.0001)
				convey.So(repeat, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When two bests land within seconds of each other", func() {
			d.Detect(at(0), bestSnap(92.0), m, st)
			first := d.Detect(at(1), bestSnap(91.8), m, st)
			second := d.Detect(at(5), bestSnap(91.2), m, st)

			convey.Convey("Then both are reported", func() {
				convey.So(kinds(first), convey.ShouldResemble, []model.Kind{model.KindPersonalBest})
				convey.So(kinds(second), convey.ShouldResemble, []model.Kind{model.KindPersonalBest})
				convey.So(second[0].Message, convey.ShouldEqual, "Personal best! 91.200")
			})
		})

		convey.Convey("When the first best of the session arrives", func() {
			events := d.Detect(at(0), bestSnap(92.0), m, st)

			convey.Convey("Then there is no prior best to beat", func() {
				convey.So(events, convey.ShouldBeEmpty)
			})
		})
	})
}
