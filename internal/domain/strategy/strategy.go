// Package strategy derives race strategy metrics from the telemetry stream.
//
// The Calculator is deterministic over the sequence of snapshots it has been
// fed: all memory is the bounded lap history it keeps itself, and no clock or
// other external state is consulted. Feeding the same snapshot sequence
// always produces the same Metrics sequence.
package strategy

import "github.com/pitbox/pitwall/internal/domain/model"

// Severity classifies tire wear against configured thresholds.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "ok"
	}
}

// TempBand classifies a corner's averaged tire temperature.
type TempBand int

const (
	BandUnknown TempBand = iota
	BandCold
	BandOptimal
	BandHot
)

func (b TempBand) String() string {
	switch b {
	case BandCold:
		return "cold"
	case BandOptimal:
		return "optimal"
	case BandHot:
		return "hot"
	default:
		return "unknown"
	}
}

// Pace is the lap-time trend versus the rolling baseline.
type Pace int

const (
	PaceStable Pace = iota
	PaceImproving
	PaceDropping
)

func (p Pace) String() string {
	switch p {
	case PaceImproving:
		return "improving"
	case PaceDropping:
		return "dropping"
	default:
		return "stable"
	}
}

// Urgency is the combined pit-stop urgency ladder.
type Urgency int

const (
	UrgencyOK Urgency = iota
	UrgencyInfo
	UrgencyWarning
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyInfo:
		return "info"
	case UrgencyWarning:
		return "warning"
	case UrgencyCritical:
		return "critical"
	default:
		return "ok"
	}
}

// PitReason names what is driving the pit urgency.
type PitReason int

const (
	ReasonNone PitReason = iota
	ReasonFuel
	ReasonTires
)

func (r PitReason) String() string {
	switch r {
	case ReasonFuel:
		return "fuel"
	case ReasonTires:
		return "tires"
	default:
		return "none"
	}
}

// Metrics is the derived strategy state for one tick. It is recomputed fresh
// every tick and owned transiently by the pipeline; nothing downstream may
// hold it across ticks.
type Metrics struct {
	// Fuel. FuelKnown is false until at least one valid lap of consumption
	// has been observed; LapsOfFuel and PitWindowLaps are meaningless until
	// then and detectors must treat them as non-triggering.
	FuelPerLap    float64
	FuelKnown     bool
	LapsOfFuel    float64
	PitWindowOpen bool
	PitWindowLaps int

	// Tires
	WearSeverity    [4]Severity
	WorstWearCorner model.Corner
	WorstWearPct    float64
	TempBand        [4]TempBand

	// Pace. PaceDelta is recent average minus baseline average, seconds;
	// positive means slower.
	Pace      Pace
	PaceDelta float64

	// Pit recommendation. FuelUrgency and TireUrgency are the per-category
	// ladders; Urgency is the worse of the two.
	FuelUrgency Urgency
	TireUrgency Urgency
	Urgency     Urgency
	PitReason   PitReason
	NeedsPit    bool
}

// unknownPitWindow is reported while fuel consumption is still unknown.
const unknownPitWindow = 999

// Calculator turns the snapshot sequence into Metrics. Not safe for
// concurrent use; the pipeline feeds it from a single tick loop.
type Calculator struct {
	fuelWarningLaps  float64
	fuelCriticalLaps float64
	tireWarningPct   float64
	tireCriticalPct  float64
	tempColdC        float64
	tempHotC         float64
	fuelWindowLaps   int
	minFuelPerLap    float64
	paceTrendLaps    int
	paceDropSec      float64
	paceGainSec      float64

	// Lap-edge tracking
	hasLastLap     bool
	lastLap        int
	fuelAtLapStart float64

	// Bounded histories
	fuelHistory []float64 // per-lap burn, newest last, capped at fuelWindowLaps
	lapTimes    []float64 // completed lap times, capped at 2*paceTrendLaps

	// Pace trend held between lap completions
	pace      Pace
	paceDelta float64
}

// New creates a Calculator with the given options applied over defaults.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		fuelWarningLaps:  defaultFuelWarningLaps,
		fuelCriticalLaps: defaultFuelCriticalLaps,
		tireWarningPct:   defaultTireWarningPct,
		tireCriticalPct:  defaultTireCriticalPct,
		tempColdC:        defaultTempColdC,
		tempHotC:         defaultTempHotC,
		fuelWindowLaps:   defaultFuelWindowLaps,
		minFuelPerLap:    defaultMinFuelPerLap,
		paceTrendLaps:    defaultPaceTrendLaps,
		paceDropSec:      defaultPaceDropSec,
		paceGainSec:      defaultPaceGainSec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset clears all lap history, e.g. for a new session.
func (c *Calculator) Reset() {
	c.hasLastLap = false
	c.lastLap = 0
	c.fuelAtLapStart = 0
	c.fuelHistory = c.fuelHistory[:0]
	c.lapTimes = c.lapTimes[:0]
	c.pace = PaceStable
	c.paceDelta = 0
}

// Update consumes the next snapshot and returns the derived metrics.
func (c *Calculator) Update(snap model.Snapshot) Metrics {
	lapCompleted := c.hasLastLap && snap.Lap > c.lastLap
	c.trackFuel(snap, lapCompleted)
	c.trackPace(snap, lapCompleted)

	var m Metrics

	m.FuelPerLap = c.fuelPerLap()
	m.FuelKnown = m.FuelPerLap > 0
	if m.FuelKnown {
		m.LapsOfFuel = snap.FuelLevel / m.FuelPerLap
		m.PitWindowOpen = m.LapsOfFuel <= c.fuelWarningLaps
		window := m.LapsOfFuel - c.fuelCriticalLaps
		if window < 0 {
			window = 0
		}
		m.PitWindowLaps = int(window)
	} else {
		m.PitWindowLaps = unknownPitWindow
	}

	m.WorstWearCorner, m.WorstWearPct = worstWear(snap)
	for _, corner := range model.Corners {
		m.WearSeverity[corner] = c.wearSeverity(snap.TireWear[corner])
		m.TempBand[corner] = c.tempBand(snap, corner)
	}

	m.Pace = c.pace
	m.PaceDelta = c.paceDelta

	m.FuelUrgency = c.fuelUrgency(m)
	m.TireUrgency = c.tireUrgency(m.WorstWearPct)
	if m.FuelUrgency >= m.TireUrgency {
		m.Urgency = m.FuelUrgency
		if m.FuelUrgency > UrgencyOK {
			m.PitReason = ReasonFuel
		}
	} else {
		m.Urgency = m.TireUrgency
		if m.TireUrgency > UrgencyOK {
			m.PitReason = ReasonTires
		}
	}
	m.NeedsPit = m.Urgency >= UrgencyWarning

	return m
}

// trackFuel records per-lap burn at lap-completion edges. Partial-lap burn is
// never extrapolated; laps burning less than the configured floor (out-laps,
// cautions, tows) are discarded as invalid.
func (c *Calculator) trackFuel(snap model.Snapshot, lapCompleted bool) {
	if !c.hasLastLap {
		c.hasLastLap = true
		c.lastLap = snap.Lap
		c.fuelAtLapStart = snap.FuelLevel
		return
	}
	if lapCompleted {
		used := c.fuelAtLapStart - snap.FuelLevel
		if used >= c.minFuelPerLap {
			c.fuelHistory = append(c.fuelHistory, used)
			if len(c.fuelHistory) > c.fuelWindowLaps {
				c.fuelHistory = c.fuelHistory[len(c.fuelHistory)-c.fuelWindowLaps:]
			}
		}
		c.fuelAtLapStart = snap.FuelLevel
	}
	c.lastLap = snap.Lap
}

func (c *Calculator) fuelPerLap() float64 {
	if len(c.fuelHistory) == 0 {
		return 0
	}
	var sum float64
	for _, v := range c.fuelHistory {
		sum += v
	}
	return sum / float64(len(c.fuelHistory))
}

// trackPace appends completed lap times and re-evaluates the trend. The
// trend requires 2*paceTrendLaps completed laps; until then it stays stable.
func (c *Calculator) trackPace(snap model.Snapshot, lapCompleted bool) {
	if !lapCompleted || snap.LastLapTime <= 0 {
		return
	}
	c.lapTimes = append(c.lapTimes, snap.LastLapTime)
	maxLaps := 2 * c.paceTrendLaps
	if len(c.lapTimes) > maxLaps {
		c.lapTimes = c.lapTimes[len(c.lapTimes)-maxLaps:]
	}
	if len(c.lapTimes) < maxLaps {
		c.pace = PaceStable
		c.paceDelta = 0
		return
	}

	n := c.paceTrendLaps
	recent := mean(c.lapTimes[len(c.lapTimes)-n:])
	earlier := mean(c.lapTimes[len(c.lapTimes)-2*n : len(c.lapTimes)-n])
	delta := recent - earlier
	c.paceDelta = delta

	switch {
	case delta > c.paceDropSec:
		c.pace = PaceDropping
	case delta < -c.paceGainSec:
		c.pace = PaceImproving
	default:
		c.pace = PaceStable
	}
}

func (c *Calculator) wearSeverity(pct float64) Severity {
	switch {
	case pct >= c.tireCriticalPct:
		return SeverityCritical
	case pct >= c.tireWarningPct:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

func (c *Calculator) tempBand(snap model.Snapshot, corner model.Corner) TempBand {
	if !snap.HasTireTemps() {
		return BandUnknown
	}
	t := snap.CornerTemp(corner)
	switch {
	case t >= c.tempHotC:
		return BandHot
	case t <= c.tempColdC:
		return BandCold
	default:
		return BandOptimal
	}
}

func (c *Calculator) fuelUrgency(m Metrics) Urgency {
	if !m.FuelKnown {
		return UrgencyOK
	}
	switch {
	case m.LapsOfFuel <= c.fuelCriticalLaps:
		return UrgencyCritical
	case m.LapsOfFuel <= c.fuelWarningLaps:
		return UrgencyWarning
	default:
		return UrgencyOK
	}
}

func (c *Calculator) tireUrgency(worstWear float64) Urgency {
	switch {
	case worstWear >= c.tireCriticalPct:
		return UrgencyCritical
	case worstWear >= c.tireWarningPct:
		return UrgencyWarning
	default:
		return UrgencyOK
	}
}

func worstWear(snap model.Snapshot) (model.Corner, float64) {
	worst := model.LF
	worstPct := snap.TireWear[model.LF]
	for _, corner := range model.Corners[1:] {
		if snap.TireWear[corner] > worstPct {
			worst = corner
			worstPct = snap.TireWear[corner]
		}
	}
	return worst, worstPct
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
