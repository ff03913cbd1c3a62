// Package model contains domain models passed between pipeline stages.
package model

import "time"

// Corner identifies one tire corner of the car.
type Corner int

// Tire corners, in wire order.
const (
	LF Corner = iota // left front
	RF               // right front
	LR               // left rear
	RR               // right rear
)

// Corners lists all four corners in a stable order for iteration.
var Corners = [4]Corner{LF, RF, LR, RR}

func (c Corner) String() string {
	switch c {
	case LF:
		return "LF"
	case RF:
		return "RF"
	case LR:
		return "LR"
	case RR:
		return "RR"
	default:
		return "??"
	}
}

// Front reports whether the corner is on the front axle.
func (c Corner) Front() bool {
	return c == LF || c == RF
}

// TireZones holds surface temperatures across one tire, in Celsius.
type TireZones struct {
	Inner  float64 `json:"inner"`
	Middle float64 `json:"middle"`
	Outer  float64 `json:"outer"`
}

// Average returns the mean surface temperature of the tire.
func (z TireZones) Average() float64 {
	return (z.Inner + z.Middle + z.Outer) / 3
}

// FlagState is the session flag condition reported by the simulator.
type FlagState int

const (
	FlagNone FlagState = iota
	FlagGreen
	FlagYellow
	FlagCheckered
	FlagOther
)

func (f FlagState) String() string {
	switch f {
	case FlagGreen:
		return "green"
	case FlagYellow:
		return "yellow"
	case FlagCheckered:
		return "checkered"
	case FlagOther:
		return "other"
	default:
		return "none"
	}
}

// Snapshot is one immutable telemetry sample, produced once per tick by the
// telemetry reader. All times are seconds, all temperatures Celsius, all
// wear/fuel percentages in [0,100] (0 = new tire / empty tank).
type Snapshot struct {
	// Lap info
	Lap      int     `json:"lap"`
	LapPct   float64 `json:"lap_pct"`  // fractional lap position, [0,1)
	Position int     `json:"position"` // 1-based rank, 0 when unknown

	// Lap times
	LastLapTime    float64 `json:"last_lap_time"`
	BestLapTime    float64 `json:"best_lap_time"`
	LapDeltaToBest float64 `json:"lap_delta_to_best"` // negative = faster

	// Fuel
	FuelLevel    float64 `json:"fuel_level"` // liters
	FuelLevelPct float64 `json:"fuel_level_pct"`

	// Tires, indexed by Corner
	TireWear     [4]float64   `json:"tire_wear"` // percent worn
	TireTemp     [4]TireZones `json:"tire_temp"`
	TirePressure [4]float64   `json:"tire_pressure"` // kPa

	// Brake line pressure per corner, kPa
	BrakePressure [4]float64 `json:"brake_pressure"`

	// Gaps to the cars immediately ahead/behind, seconds. Nil when no car
	// holds the neighboring position.
	GapAhead  *float64 `json:"gap_ahead,omitempty"`
	GapBehind *float64 `json:"gap_behind,omitempty"`

	// Session state
	SessionTimeRemain float64   `json:"session_time_remain"`
	SessionLapsRemain int       `json:"session_laps_remain"`
	Flag              FlagState `json:"flag"`
	OnTrack           bool      `json:"on_track"`
	OnPitRoad         bool      `json:"on_pit_road"`
	IncidentCount     int       `json:"incident_count"`

	// Conditions
	TrackTempC float64 `json:"track_temp_c"`
	AirTempC   float64 `json:"air_temp_c"`

	// Timestamp is the sample time assigned by the reader.
	Timestamp time.Time `json:"timestamp"`
}

// CornerTemp returns the averaged surface temperature for a corner.
func (s Snapshot) CornerTemp(c Corner) float64 {
	return s.TireTemp[c].Average()
}

// HasTireTemps reports whether the car reports tire temperatures at all.
// Some cars return zeros for every zone; detectors skip temps entirely then.
func (s Snapshot) HasTireTemps() bool {
	for _, c := range Corners {
		if s.CornerTemp(c) != 0 {
			return true
		}
	}
	return false
}

// Normalize returns a copy with out-of-range fields clamped to their stated
// invariants. One bad reading must not destabilize session-long state, so
// values are repaired rather than rejected.
func (s Snapshot) Normalize() Snapshot {
	n := s
	n.LapPct = clamp(n.LapPct, 0, 0.999999)
	n.FuelLevelPct = clamp(n.FuelLevelPct, 0, 100)
	if n.FuelLevel < 0 {
		n.FuelLevel = 0
	}
	if n.Position < 0 {
		n.Position = 0
	}
	if n.Lap < 0 {
		n.Lap = 0
	}
	if n.IncidentCount < 0 {
		n.IncidentCount = 0
	}
	for i := range n.TireWear {
		n.TireWear[i] = clamp(n.TireWear[i], 0, 100)
	}
	if n.GapAhead != nil && *n.GapAhead < 0 {
		g := 0.0
		n.GapAhead = &g
	}
	if n.GapBehind != nil && *n.GapBehind < 0 {
		g := 0.0
		n.GapBehind = &g
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Gap is a convenience constructor for optional gap fields.
func Gap(sec float64) *float64 {
	return &sec
}
