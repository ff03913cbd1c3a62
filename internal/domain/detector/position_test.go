package detector_test

import (
	"testing"
	"time"

	"github.com/pitbox/pitwall/internal/domain/detector"
	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
	"github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// at offsets the test clock by whole seconds.
func at(sec int) time.Time {
	return base.Add(time.Duration(sec) * time.Second)
}

// raceSnap is a quiet green-flag snapshot that triggers nothing by itself.
func raceSnap(lap, position int) model.Snapshot {
	return model.Snapshot{
		Lap:      lap,
		Position: position,
		Flag:     model.FlagGreen,
		OnTrack:  true,
	}
}

// kinds extracts the event kinds for compact assertions.
func kinds(events []model.Event) []model.Kind {
	out := make([]model.Kind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestDetector_PositionBatching(t *testing.T) {
	convey.Convey("Given a detector with a 5s settle window from lap 2", t, func() {
		d := detector.New()
		st := detector.NewState()
		var m strategy.Metrics

		convey.Convey("When a single overtake settles", func() {
			d.Detect(at(0), raceSnap(3, 10), m, st)
			d.Detect(at(1), raceSnap(3, 9), m, st)
			events := d.Detect(at(7), raceSnap(3, 9), m, st)

			convey.Convey("Then one gained event reports the new rank", func() {
				convey.So(events, convey.ShouldHaveLength, 1)
				convey.So(events[0].Kind, convey.ShouldEqual, model.KindPositionGained)
				convey.So(events[0].Priority, convey.ShouldEqual, model.PriorityHigh)
				convey.So(events[0].Message, convey.ShouldEqual, "Gained 1 position, now P9")
				convey.So(events[0].Payload.PositionsGained, convey.ShouldEqual, 1)
				convey.So(events[0].Payload.NewPosition, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When a multi-position charge settles as one batch", func() {
			d.Detect(at(0), raceSnap(3, 10), m, st)
			d.Detect(at(1), raceSnap(3, 9), m, st)
			d.Detect(at(2), raceSnap(3, 7), m, st)
			d.Detect(at(3), raceSnap(3, 6), m, st)
			convey.So(d.Detect(at(4), raceSnap(3, 6), m, st), convey.ShouldBeEmpty)
			events := d.Detect(at(9), raceSnap(3, 6), m, st)

			convey.Convey("Then the net change flushes as a single event", func() {
				convey.So(events, convey.ShouldHaveLength, 1)
				convey.So(events[0].Kind, convey.ShouldEqual, model.KindPositionGained)
				convey.So(events[0].Message, convey.ShouldEqual, "Gained 4 positions, now P6")
				convey.So(events[0].Payload.PositionsGained, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When swings net to zero inside the window", func() {
			d.Detect(at(0), raceSnap(3, 10), m, st)
			d.Detect(at(1), raceSnap(3, 9), m, st)
			d.Detect(at(2), raceSnap(3, 10), m, st)
			events := d.Detect(at(8), raceSnap(3, 10), m, st)

			convey.Convey("Then nothing is reported", func() {
				convey.So(events, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When positions are lost", func() {
			d.Detect(at(0), raceSnap(3, 6), m, st)
			d.Detect(at(1), raceSnap(3, 8), m, st)
			events := d.Detect(at(7), raceSnap(3, 8), m, st)

			convey.Convey("Then one lost event reports the damage", func() {
				convey.So(events, convey.ShouldHaveLength, 1)
				convey.So(events[0].Kind, convey.ShouldEqual, model.KindPositionLost)
				convey.So(events[0].Message, convey.ShouldEqual, "Lost 2 positions, now P8")
				convey.So(events[0].Payload.PositionsLost, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the race has not reached the callout lap", func() {
			d.Detect(at(0), raceSnap(1, 20), m, st)
			d.Detect(at(1), raceSnap(1, 12), m, st)
			events := d.Detect(at(10), raceSnap(1, 12), m, st)

			convey.Convey("Then the start chaos stays silent", func() {
				convey.So(events, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the rank is unknown", func() {
			d.Detect(at(0), raceSnap(3, 10), m, st)
			events := d.Detect(at(1), raceSnap(3, 0), m, st)

			convey.Convey("Then the tick is skipped", func() {
				convey.So(events, convey.ShouldBeEmpty)
			})
		})
	})
}
