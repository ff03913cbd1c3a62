package strategy

// Default thresholds, matching a typical GT3 stint profile. Everything is
// overridable from configuration.
const (
	defaultFuelWarningLaps  = 5.0
	defaultFuelCriticalLaps = 2.0
	defaultTireWarningPct   = 70.0
	defaultTireCriticalPct  = 85.0
	defaultTempColdC        = 60.0
	defaultTempHotC         = 110.0
	defaultFuelWindowLaps   = 5
	defaultMinFuelPerLap    = 0.5
	defaultPaceTrendLaps    = 3
	defaultPaceDropSec      = 0.5
	defaultPaceGainSec      = 0.3
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithFuelThresholds sets the warning and critical fuel levels, in laps of
// fuel remaining.
func WithFuelThresholds(warningLaps, criticalLaps float64) Option {
	return func(c *Calculator) {
		if warningLaps > 0 {
			c.fuelWarningLaps = warningLaps
		}
		if criticalLaps > 0 {
			c.fuelCriticalLaps = criticalLaps
		}
	}
}

// WithTireWearThresholds sets the warning and critical wear percentages.
func WithTireWearThresholds(warningPct, criticalPct float64) Option {
	return func(c *Calculator) {
		if warningPct > 0 {
			c.tireWarningPct = warningPct
		}
		if criticalPct > 0 {
			c.tireCriticalPct = criticalPct
		}
	}
}

// WithTireTempThresholds sets the cold and hot classification cutoffs in
// Celsius.
func WithTireTempThresholds(coldC, hotC float64) Option {
	return func(c *Calculator) {
		if hotC > coldC {
			c.tempColdC = coldC
			c.tempHotC = hotC
		}
	}
}

// WithFuelWindow sets how many completed laps feed the smoothed consumption
// average.
func WithFuelWindow(laps int) Option {
	return func(c *Calculator) {
		if laps > 0 {
			c.fuelWindowLaps = laps
		}
	}
}

// WithMinFuelPerLap sets the floor below which a lap's burn is discarded as
// an out-lap, caution lap, or tow.
func WithMinFuelPerLap(liters float64) Option {
	return func(c *Calculator) {
		if liters >= 0 {
			c.minFuelPerLap = liters
		}
	}
}

// WithPaceTrend sets the trend window (laps per side of the comparison) and
// the noise margins for the dropping/improving calls.
func WithPaceTrend(laps int, dropSec, gainSec float64) Option {
	return func(c *Calculator) {
		if laps > 0 {
			c.paceTrendLaps = laps
		}
		if dropSec > 0 {
			c.paceDropSec = dropSec
		}
		if gainSec > 0 {
			c.paceGainSec = gainSec
		}
	}
}
