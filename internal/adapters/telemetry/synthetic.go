package telemetry

import (
	"context"
	"math/rand"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
)

// Synthetic session tuning constants.
const (
	defaultTotalLaps   = 30
	defaultLapTimeSec  = 92.0
	defaultStartFuelL  = 45.0
	defaultTankL       = 60.0
	defaultFieldAheadS = 2.8
	defaultBehindS     = 4.0

	syntheticTickSec  = 1.0
	fuelPerLapL       = 2.1
	wearPerLapPct     = 2.4
	warmupPerLapC     = 9.0
	optimalTempC      = 92.0
	lapTimeJitterSec  = 0.6
	gapDriftPerLapSec = 0.12
	incidentChance    = 0.004
	yellowChance      = 0.002
	yellowDurationSec = 25
)

// SyntheticReader simulates a race session one second at a time. It exists so
// the full pipeline can run without a sim attached; the profile is a mid-pack
// stint that burns fuel, wears tires, warms them past optimal, and slowly
// reels in the car ahead.
type SyntheticReader struct {
	rng *rand.Rand

	totalLaps int
	lap       int
	lapPct    float64
	position  int

	fuel      float64
	wear      float64
	tempC     float64
	gapAhead  float64
	gapBehind float64

	lastLapTime float64
	bestLapTime float64
	incidents   int

	yellowTicks int
	now         time.Time
}

// NewSyntheticReader creates a synthetic session. A zero seed picks one from
// the clock.
func NewSyntheticReader(seed int64) *SyntheticReader {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SyntheticReader{
		rng:       rand.New(rand.NewSource(seed)),
		totalLaps: defaultTotalLaps,
		lap:       1,
		position:  8,
		fuel:      defaultStartFuelL,
		tempC:     55.0,
		gapAhead:  defaultFieldAheadS,
		gapBehind: defaultBehindS,
		now:       time.Now(),
	}
}

// Next advances the simulation by one second and returns the snapshot.
func (s *SyntheticReader) Next(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	if s.lap > s.totalLaps {
		return model.Snapshot{}, ErrEndOfSession
	}

	s.advance()

	snap := model.Snapshot{
		Lap:               s.lap,
		LapPct:            s.lapPct,
		Position:          s.position,
		LastLapTime:       s.lastLapTime,
		BestLapTime:       s.bestLapTime,
		FuelLevel:         s.fuel,
		FuelLevelPct:      s.fuel / defaultTankL * 100,
		GapAhead:          model.Gap(s.gapAhead),
		GapBehind:         model.Gap(s.gapBehind),
		SessionLapsRemain: s.totalLaps - s.lap,
		Flag:              s.flag(),
		OnTrack:           true,
		IncidentCount:     s.incidents,
		TrackTempC:        31.0,
		AirTempC:          24.0,
		Timestamp:         s.now,
	}
	for _, c := range model.Corners {
		snap.TireWear[c] = s.wear
		snap.TireTemp[c] = model.TireZones{Inner: s.tempC + 2, Middle: s.tempC, Outer: s.tempC - 2}
		snap.TirePressure[c] = 165.0
	}
	return snap.Normalize(), nil
}

func (s *SyntheticReader) advance() {
	s.now = s.now.Add(time.Second)

	lapTime := defaultLapTimeSec + s.rng.Float64()*lapTimeJitterSec
	s.lapPct += syntheticTickSec / lapTime
	if s.lapPct >= 1.0 {
		s.lapPct -= 1.0
		s.completeLap(lapTime)
	}

	if s.yellowTicks > 0 {
		s.yellowTicks--
		return
	}
	if s.rng.Float64() < incidentChance {
		s.incidents++
	}
	if s.rng.Float64() < yellowChance {
		s.yellowTicks = yellowDurationSec
	}
}

func (s *SyntheticReader) completeLap(lapTime float64) {
	s.lap++
	s.lastLapTime = lapTime
	if s.bestLapTime == 0 || lapTime < s.bestLapTime {
		s.bestLapTime = lapTime
	}

	s.fuel -= fuelPerLapL
	if s.fuel < 0 {
		s.fuel = 0
	}
	s.wear += wearPerLapPct
	if s.wear > 100 {
		s.wear = 100
	}
	if s.tempC < optimalTempC+20 {
		s.tempC += warmupPerLapC
	}

	// Slowly close on the car ahead; the car behind drifts away.
	s.gapAhead -= gapDriftPerLapSec
	if s.gapAhead < 0.2 {
		// Completed the pass.
		s.gapAhead = defaultFieldAheadS
		if s.position > 1 {
			s.position--
		}
	}
	s.gapBehind += gapDriftPerLapSec / 2
}

func (s *SyntheticReader) flag() model.FlagState {
	if s.yellowTicks > 0 {
		return model.FlagYellow
	}
	if s.lap >= s.totalLaps {
		return model.FlagCheckered
	}
	return model.FlagGreen
}

// Close implements Reader; the synthetic source holds no resources.
func (s *SyntheticReader) Close() error { return nil }
