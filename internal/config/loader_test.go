package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

// clearConfigEnv unsets every PITWALL_ variable for the duration of the test
// so loader behavior is deterministic regardless of the outer environment.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "PITWALL_") {
			continue
		}
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pitwall.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	convey.Convey("Given no file and no environment overrides", t, func() {
		cfg, err := Load(context.Background())

		convey.Convey("Then the defaults come through untouched", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.GapCloseSec, convey.ShouldAlmostEqual, 1.5, 0.001)
		})
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PITWALL_ADDR", ":9090")
	t.Setenv("PITWALL_QUEUE_SIZE", "512")
	t.Setenv("PITWALL_FUEL_WARNING_LAPS", "6.5")
	t.Setenv("PITWALL_OVERLAY_ENABLED", "false")

	convey.Convey("Given environment overrides", t, func() {
		cfg, err := Load(context.Background())

		convey.Convey("Then overridden keys win and the rest stay default", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 512)
			convey.So(cfg.FuelWarningLaps, convey.ShouldAlmostEqual, 6.5, 0.001)
			convey.So(cfg.OverlayEnabled, convey.ShouldBeFalse)
			convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 1000)
		})
	})
}

func TestLoad_File(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, "addr: \":7070\"\ntick_interval_ms: 500\npace_trend_laps: 4\n")
	t.Setenv("PITWALL_CONFIG", path)

	convey.Convey("Given a YAML config file", t, func() {
		cfg, err := Load(context.Background())

		convey.Convey("Then file values override defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 500)
			convey.So(cfg.PaceTrendLaps, convey.ShouldEqual, 4)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
		})
	})
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, "addr: \":7070\"\nqueue_size: 64\n")
	t.Setenv("PITWALL_CONFIG", path)
	t.Setenv("PITWALL_ADDR", ":9999")

	convey.Convey("Given both a file and an environment override", t, func() {
		cfg, err := Load(context.Background())

		convey.Convey("Then the environment has the last word", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9999")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
		})
	})
}

func TestLoad_Errors(t *testing.T) {
	convey.Convey("Given a missing config file", t, func() {
		clearConfigEnv(t)
		t.Setenv("PITWALL_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := Load(context.Background())

		convey.Convey("Then loading fails with the load sentinel", func() {
			convey.So(errors.Is(err, ErrLoadConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an unparsable config file", t, func() {
		clearConfigEnv(t)
		t.Setenv("PITWALL_CONFIG", writeConfigFile(t, "addr: [unterminated"))

		_, err := Load(context.Background())

		convey.Convey("Then loading fails with the load sentinel", func() {
			convey.So(errors.Is(err, ErrLoadConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given thresholds that fail validation", t, func() {
		clearConfigEnv(t)
		t.Setenv("PITWALL_GAP_BATTLE_SEC", "5.0")

		_, err := Load(context.Background())

		convey.Convey("Then loading fails with the validation sentinel", func() {
			convey.So(errors.Is(err, ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
