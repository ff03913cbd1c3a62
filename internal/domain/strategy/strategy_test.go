package strategy_test

import (
	"testing"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
	"github.com/smartystreets/goconvey/convey"
)

// lapSnap builds a snapshot at the start of the given lap.
func lapSnap(lap int, fuel float64) model.Snapshot {
	return model.Snapshot{
		Lap:       lap,
		Position:  5,
		FuelLevel: fuel,
		OnTrack:   true,
	}
}

func uniformTemps(c float64) [4]model.TireZones {
	var t [4]model.TireZones
	for i := range t {
		t[i] = model.TireZones{Inner: c, Middle: c, Outer: c}
	}
	return t
}

func TestCalculator_Fuel(t *testing.T) {
	convey.Convey("Given a calculator with default thresholds", t, func() {
		calc := strategy.New()

		convey.Convey("When no lap has completed yet", func() {
			m := calc.Update(lapSnap(1, 40.0))

			convey.Convey("Then fuel consumption is unknown", func() {
				convey.So(m.FuelKnown, convey.ShouldBeFalse)
				convey.So(m.LapsOfFuel, convey.ShouldEqual, 0)
				convey.So(m.PitWindowOpen, convey.ShouldBeFalse)
				convey.So(m.PitWindowLaps, convey.ShouldEqual, 999)
				convey.So(m.FuelUrgency, convey.ShouldEqual, strategy.UrgencyOK)
			})
		})

		convey.Convey("When laps complete with steady burn", func() {
			calc.Update(lapSnap(1, 40.0))
			calc.Update(lapSnap(2, 38.0))
			m := calc.Update(lapSnap(3, 36.0))

			convey.Convey("Then per-lap burn is the window average", func() {
				convey.So(m.FuelKnown, convey.ShouldBeTrue)
				convey.So(m.FuelPerLap, convey.ShouldAlmostEqual, 2.0, 0.001)
				convey.So(m.LapsOfFuel, convey.ShouldAlmostEqual, 18.0, 0.001)
				convey.So(m.PitWindowOpen, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a lap burns less than the validity floor", func() {
			calc.Update(lapSnap(1, 40.0))
			calc.Update(lapSnap(2, 38.0))
			// Caution lap: only 0.3 used, below the 0.5 floor.
			calc.Update(lapSnap(3, 37.7))
			m := calc.Update(lapSnap(4, 35.7))

			convey.Convey("Then the outlier is discarded from the average", func() {
				convey.So(m.FuelPerLap, convey.ShouldAlmostEqual, 2.0, 0.001)
			})
		})

		convey.Convey("When fuel runs into the warning window", func() {
			calc.Update(lapSnap(1, 12.0))
			calc.Update(lapSnap(2, 10.0))
			m := calc.Update(lapSnap(3, 8.0))

			convey.Convey("Then the pit window opens", func() {
				convey.So(m.LapsOfFuel, convey.ShouldAlmostEqual, 4.0, 0.001)
				convey.So(m.PitWindowOpen, convey.ShouldBeTrue)
				convey.So(m.PitWindowLaps, convey.ShouldEqual, 2)
				convey.So(m.FuelUrgency, convey.ShouldEqual, strategy.UrgencyWarning)
				convey.So(m.PitReason, convey.ShouldEqual, strategy.ReasonFuel)
				convey.So(m.NeedsPit, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When fuel reaches the critical threshold", func() {
			calc.Update(lapSnap(1, 8.0))
			calc.Update(lapSnap(2, 6.0))
			m := calc.Update(lapSnap(3, 4.0))

			convey.Convey("Then urgency is critical with no window left", func() {
				convey.So(m.LapsOfFuel, convey.ShouldAlmostEqual, 2.0, 0.001)
				convey.So(m.FuelUrgency, convey.ShouldEqual, strategy.UrgencyCritical)
				convey.So(m.PitWindowLaps, convey.ShouldEqual, 0)
			})
		})
	})
}

func TestCalculator_Tires(t *testing.T) {
	convey.Convey("Given a calculator with default thresholds", t, func() {
		calc := strategy.New()

		convey.Convey("When wear sits exactly on a threshold", func() {
			snap := lapSnap(5, 30.0)
			snap.TireWear = [4]float64{70.0, 40.0, 40.0, 40.0}
			m := calc.Update(snap)

			convey.Convey("Then the boundary counts as the severer class", func() {
				convey.So(m.WearSeverity[model.LF], convey.ShouldEqual, strategy.SeverityWarning)
				convey.So(m.WearSeverity[model.RF], convey.ShouldEqual, strategy.SeverityOK)
				convey.So(m.WorstWearCorner, convey.ShouldEqual, model.LF)
				convey.So(m.WorstWearPct, convey.ShouldAlmostEqual, 70.0, 0.001)
				convey.So(m.TireUrgency, convey.ShouldEqual, strategy.UrgencyWarning)
				convey.So(m.PitReason, convey.ShouldEqual, strategy.ReasonTires)
			})
		})

		convey.Convey("When a corner crosses critical wear", func() {
			snap := lapSnap(5, 30.0)
			snap.TireWear = [4]float64{50.0, 86.0, 50.0, 50.0}
			m := calc.Update(snap)

			convey.Convey("Then tire urgency is critical", func() {
				convey.So(m.WearSeverity[model.RF], convey.ShouldEqual, strategy.SeverityCritical)
				convey.So(m.WorstWearCorner, convey.ShouldEqual, model.RF)
				convey.So(m.TireUrgency, convey.ShouldEqual, strategy.UrgencyCritical)
				convey.So(m.NeedsPit, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the car reports no temperatures", func() {
			m := calc.Update(lapSnap(5, 30.0))

			convey.Convey("Then every band is unknown", func() {
				for _, c := range model.Corners {
					convey.So(m.TempBand[c], convey.ShouldEqual, strategy.BandUnknown)
				}
			})
		})

		convey.Convey("When temperatures sit on band boundaries", func() {
			snap := lapSnap(5, 30.0)
			snap.TireTemp = uniformTemps(60.0)
			cold := calc.Update(snap)

			snap.TireTemp = uniformTemps(110.0)
			hot := calc.Update(snap)

			snap.TireTemp = uniformTemps(85.0)
			mid := calc.Update(snap)

			convey.Convey("Then boundaries resolve cold and hot, between is optimal", func() {
				convey.So(cold.TempBand[model.LF], convey.ShouldEqual, strategy.BandCold)
				convey.So(hot.TempBand[model.LF], convey.ShouldEqual, strategy.BandHot)
				convey.So(mid.TempBand[model.LF], convey.ShouldEqual, strategy.BandOptimal)
			})
		})
	})
}

func TestCalculator_Pace(t *testing.T) {
	convey.Convey("Given a calculator with a two-lap trend window", t, func() {
		calc := strategy.New(strategy.WithPaceTrend(2, 0.5, 0.3))

		feed := func(lap int, lastLapTime float64) strategy.Metrics {
			snap := lapSnap(lap, 40.0)
			snap.LastLapTime = lastLapTime
			return calc.Update(snap)
		}

		convey.Convey("When fewer laps than the trend needs have completed", func() {
			feed(1, 0)
			feed(2, 90.0)
			m := feed(3, 90.0)

			convey.Convey("Then the trend stays stable", func() {
				convey.So(m.Pace, convey.ShouldEqual, strategy.PaceStable)
				convey.So(m.PaceDelta, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When recent laps are slower than the baseline", func() {
			feed(1, 0)
			feed(2, 90.0)
			feed(3, 90.0)
			feed(4, 91.0)
			m := feed(5, 91.0)

			convey.Convey("Then the trend reports dropping with the delta", func() {
				convey.So(m.Pace, convey.ShouldEqual, strategy.PaceDropping)
				convey.So(m.PaceDelta, convey.ShouldAlmostEqual, 1.0, 0.001)
			})
		})

		convey.Convey("When recent laps are faster than the baseline", func() {
			feed(1, 0)
			feed(2, 91.0)
			feed(3, 91.0)
			feed(4, 90.5)
			m := feed(5, 90.5)

			convey.Convey("Then the trend reports improving", func() {
				convey.So(m.Pace, convey.ShouldEqual, strategy.PaceImproving)
				convey.So(m.PaceDelta, convey.ShouldAlmostEqual, -0.5, 0.001)
			})
		})

		convey.Convey("When the same snapshot repeats within a lap", func() {
			feed(1, 0)
			feed(2, 90.0)
			feed(3, 90.0)
			feed(4, 91.0)
			first := feed(5, 91.0)
			// Mid-lap ticks carry the same lap number; no new lap time recorded.
			second := feed(5, 91.0)

			convey.Convey("Then the held trend does not change", func() {
				convey.So(first.Pace, convey.ShouldEqual, strategy.PaceDropping)
				convey.So(second.Pace, convey.ShouldEqual, strategy.PaceDropping)
				convey.So(second.PaceDelta, convey.ShouldAlmostEqual, first.PaceDelta, 0.001)
			})
		})
	})
}

func TestCalculator_Reset(t *testing.T) {
	convey.Convey("Given a calculator with accumulated history", t, func() {
		calc := strategy.New()
		calc.Update(lapSnap(1, 40.0))
		calc.Update(lapSnap(2, 38.0))
		calc.Update(lapSnap(3, 36.0))

		convey.Convey("When the calculator is reset", func() {
			calc.Reset()
			m := calc.Update(lapSnap(1, 50.0))

			convey.Convey("Then fuel knowledge starts over", func() {
				convey.So(m.FuelKnown, convey.ShouldBeFalse)
				convey.So(m.PitWindowLaps, convey.ShouldEqual, 999)
			})
		})
	})
}
