package detector_test

import (
	"testing"

	"github.com/pitbox/pitwall/internal/domain/detector"
	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
	"github.com/smartystreets/goconvey/convey"
)

func TestDetector_Ordering(t *testing.T) {
	convey.Convey("Given a tick where several situations coincide", t, func() {
		d := detector.New()
		st := detector.NewState()

		// Seed quiet state.
		d.Detect(at(0), raceSnap(8, 4), strategy.Metrics{}, st)

		convey.Convey("When a yellow flag, an incident and a fuel warning land together", func() {
			snap := raceSnap(8, 4)
			snap.Flag = model.FlagYellow
			snap.IncidentCount = 1
			m := fuelMetrics(strategy.UrgencyWarning, 4.5)
			events := d.Detect(at(1), snap, m, st)

			convey.Convey("Then events come back sorted by descending priority", func() {
				convey.So(kinds(events), convey.ShouldResemble, []model.Kind{
					model.KindYellowFlag,
					model.KindIncident,
					model.KindFuelWarning,
				})
				for i := 1; i < len(events); i++ {
					convey.So(events[i-1].Priority, convey.ShouldBeGreaterThanOrEqualTo, events[i].Priority)
				}
			})

			convey.Convey("Then every event carries an ID, lap and timestamp", func() {
				for _, e := range events {
					convey.So(e.ID, convey.ShouldNotBeEmpty)
					convey.So(e.Lap, convey.ShouldEqual, 8)
					convey.So(e.Timestamp, convey.ShouldEqual, at(1))
				}
			})
		})
	})
}

func TestDetector_StateReset(t *testing.T) {
	convey.Convey("Given a detector with accumulated session state", t, func() {
		d := detector.New()
		st := detector.NewState()

		d.Detect(at(0), raceSnap(5, 4), bandMetrics(strategy.BandOptimal), st)
		d.Detect(at(1), tempSnap(90), bandMetrics(strategy.BandOptimal), st)

		convey.Convey("When the state is reset for a new session", func() {
			st.Reset()
			events := d.Detect(at(100), tempSnap(90), bandMetrics(strategy.BandOptimal), st)

			convey.Convey("Then one-shots are armed again", func() {
				convey.So(kinds(events), convey.ShouldResemble, []model.Kind{model.KindTireOptimal})
			})
		})
	})
}

func TestDetector_MalformedSnapshot(t *testing.T) {
	convey.Convey("Given a detector and a snapshot with out-of-range fields", t, func() {
		d := detector.New()
		st := detector.NewState()
		var m strategy.Metrics

		convey.Convey("When a negative gap arrives mid-battle", func() {
			d.Detect(at(0), behindSnap(1.2), m, st)
			events := d.Detect(at(1), behindSnap(-3.0), m, st)

			convey.Convey("Then the value is clamped instead of destabilizing state", func() {
				// Clamped to zero, which is inside the battle zone.
				convey.So(kinds(events), convey.ShouldResemble, []model.Kind{model.KindGapDefend})
			})
		})

		convey.Convey("When position goes negative", func() {
			d.Detect(at(0), raceSnap(5, 4), m, st)
			events := d.Detect(at(1), raceSnap(5, -2), m, st)

			convey.Convey("Then the tick is treated as unknown rank", func() {
				convey.So(events, convey.ShouldBeEmpty)
			})
		})
	})
}
