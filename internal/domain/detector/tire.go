package detector

import (
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
)

// detectTireTemps covers two very different signals from the same sensors:
// the slow classification trend (cold/optimal/hot transitions) and the
// single-tick derivative spike of a lockup or wheelspin. Cars that report no
// temperatures at all are skipped without disturbing stored state.
func (d *Detector) detectTireTemps(now time.Time, snap model.Snapshot, m strategy.Metrics, st *State) []model.Event {
	if !snap.HasTireTemps() {
		return nil
	}

	var temps [4]float64
	for _, corner := range model.Corners {
		temps[corner] = snap.CornerTemp(corner)
	}

	var events []model.Event
	events = append(events, d.detectSpikes(now, snap, temps, st)...)
	events = append(events, d.detectTempBands(now, snap, m, temps, st)...)

	st.lastTemps = temps
	st.hasTemps = true
	return events
}

// detectSpikes fires on a per-corner temperature jump above the configured
// delta within a single tick: fronts mean a lockup under braking, rears mean
// wheelspin on throttle. The absolute temperature is irrelevant; a spike
// inside the optimal band still fires. At most one event per axle per tick.
func (d *Detector) detectSpikes(now time.Time, snap model.Snapshot, temps [4]float64, st *State) []model.Event {
	if !st.hasTemps {
		return nil
	}

	var events []model.Event
	for _, corner := range model.Corners {
		delta := temps[corner] - st.lastTemps[corner]
		if delta <= d.spikeDeltaC {
			continue
		}
		kind := model.KindWheelspin
		if corner.Front() {
			kind = model.KindLockup
		}
		if d.onCooldown(st, now, kind) {
			continue
		}
		msg := "Wheelspin! Smooth on throttle"
		if kind == model.KindLockup {
			msg = fmt.Sprintf("Lockup on %s! Easy on the brakes", corner)
		}
		events = append(events, d.event(now, snap, kind, model.PriorityHigh, msg,
			model.Payload{Corner: corner.String(), TempDeltaC: delta}))
		st.markFired(now, kind)
	}
	return events
}

// detectTempBands reports transitions of the aggregate temperature state.
// Any hot corner makes the state hot; otherwise any cold corner makes it
// cold. Only transitions are reported, and the stored state advances even
// when a cooldown suppressed the announcement.
func (d *Detector) detectTempBands(now time.Time, snap model.Snapshot, m strategy.Metrics, temps [4]float64, st *State) []model.Event {
	newState := strategy.BandOptimal
	trigger := model.LF
	for _, corner := range model.Corners {
		switch m.TempBand[corner] {
		case strategy.BandHot:
			if newState != strategy.BandHot {
				newState = strategy.BandHot
				trigger = corner
			}
		case strategy.BandCold:
			if newState == strategy.BandOptimal {
				newState = strategy.BandCold
				trigger = corner
			}
		case strategy.BandUnknown:
			return nil
		}
	}

	if newState == st.tempState {
		return nil
	}

	var events []model.Event
	switch newState {
	case strategy.BandHot:
		if !d.onCooldown(st, now, model.KindTireHot) {
			msg := "Rears overheating, smooth on throttle"
			if trigger.Front() {
				msg = "Fronts running hot, ease the braking"
			}
			events = append(events, d.event(now, snap, model.KindTireHot, model.PriorityMedium, msg,
				model.Payload{Corner: trigger.String(), TempC: temps[trigger]}))
			st.markFired(now, model.KindTireHot)
		}
	case strategy.BandCold:
		if !d.onCooldown(st, now, model.KindTireCold) {
			msg := "Rears still cold, watch the throttle"
			if trigger.Front() {
				msg = "Fronts still cold, be careful"
			}
			events = append(events, d.event(now, snap, model.KindTireCold, model.PriorityMedium, msg,
				model.Payload{Corner: trigger.String(), TempC: temps[trigger]}))
			st.markFired(now, model.KindTireCold)
		}
	case strategy.BandOptimal:
		// Worth one low-priority mention per session, not a recurring report.
		if !st.announcedOptimal {
			avg := (temps[0] + temps[1] + temps[2] + temps[3]) / 4
			events = append(events, d.event(now, snap, model.KindTireOptimal, model.PriorityLow,
				"Tires in the window",
				model.Payload{TempC: avg}))
			st.announcedOptimal = true
		}
	}
	st.tempState = newState
	return events
}
