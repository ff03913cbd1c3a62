package telemetry_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pitbox/pitwall/internal/adapters/telemetry"
	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func writeCapture(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func snapLine(t *testing.T, snap model.Snapshot) string {
	t.Helper()
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestReplayReader(t *testing.T) {
	convey.Convey("Given a JSONL capture with two snapshots and a blank line", t, func() {
		ctx := context.Background()
		first := model.Snapshot{Lap: 3, Position: 7, FuelLevel: 30.5, OnTrack: true}
		second := model.Snapshot{Lap: 4, Position: 6, FuelLevel: 28.4, OnTrack: true}
		path := writeCapture(t, snapLine(t, first), "", snapLine(t, second))

		r, err := telemetry.NewReplayReader(path)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = r.Close() }()

		convey.Convey("When the capture is read through", func() {
			got1, err1 := r.Next(ctx)
			got2, err2 := r.Next(ctx)
			_, err3 := r.Next(ctx)

			convey.Convey("Then snapshots come back in order and the end is reported", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(got1.Lap, convey.ShouldEqual, 3)
				convey.So(got1.Position, convey.ShouldEqual, 7)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(got2.Lap, convey.ShouldEqual, 4)
				convey.So(errors.Is(err3, telemetry.ErrEndOfSession), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a capture with out-of-range values", t, func() {
		ctx := context.Background()
		bad := model.Snapshot{Lap: 3, Position: -4, FuelLevel: -2.0, LapPct: 1.7, OnTrack: true}
		bad.TireWear = [4]float64{-50, 120, 40, 40}
		path := writeCapture(t, snapLine(t, bad))

		r, err := telemetry.NewReplayReader(path)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = r.Close() }()

		convey.Convey("When the snapshot is read", func() {
			got, err := r.Next(ctx)

			convey.Convey("Then values are clamped on ingest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Position, convey.ShouldEqual, 0)
				convey.So(got.FuelLevel, convey.ShouldEqual, 0)
				convey.So(got.LapPct, convey.ShouldBeLessThan, 1.0)
				convey.So(got.TireWear[model.LF], convey.ShouldEqual, 0)
				convey.So(got.TireWear[model.RF], convey.ShouldEqual, 100)
			})
		})
	})

	convey.Convey("Given a capture with a malformed line", t, func() {
		ctx := context.Background()
		path := writeCapture(t, `{"lap": not json}`)

		r, err := telemetry.NewReplayReader(path)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = r.Close() }()

		convey.Convey("When the line is read", func() {
			_, err := r.Next(ctx)

			convey.Convey("Then the replay fails with a snapshot error", func() {
				convey.So(errors.Is(err, telemetry.ErrBadSnapshot), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a missing capture file", t, func() {
		convey.Convey("When the reader is opened", func() {
			_, err := telemetry.NewReplayReader(filepath.Join(t.TempDir(), "nope.jsonl"))

			convey.Convey("Then opening fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestSyntheticReader(t *testing.T) {
	convey.Convey("Given a seeded synthetic session", t, func() {
		ctx := context.Background()
		r := telemetry.NewSyntheticReader(42)
		defer func() { _ = r.Close() }()

		convey.Convey("When several minutes of ticks are drawn", func() {
			var prev struct {
				lap  int
				fuel float64
			}
			prev.fuel = 1e9

			ok := true
			for i := 0; i < 600; i++ {
				snap, err := r.Next(ctx)
				if err != nil {
					ok = false
					break
				}
				if snap.Lap < prev.lap || snap.FuelLevel > prev.fuel+1e-9 {
					ok = false
					break
				}
				if snap.Position <= 0 || !snap.OnTrack {
					ok = false
					break
				}
				prev.lap = snap.Lap
				prev.fuel = snap.FuelLevel
			}

			convey.Convey("Then laps advance and fuel only decreases", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(prev.lap, convey.ShouldBeGreaterThan, 1)
			})
		})
	})
}
