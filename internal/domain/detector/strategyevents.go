package detector

import (
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
)

// detectStrategy turns the calculator's urgency ladders into events. Each
// category edge-triggers on an escalation of its own ladder, so a tire
// problem cannot mask a fuel problem or vice versa. De-escalation is silent.
// It also emits the routine lap update every N completed laps.
func (d *Detector) detectStrategy(now time.Time, snap model.Snapshot, m strategy.Metrics, st *State) []model.Event {
	var events []model.Event

	if snap.Lap > st.lastLap && st.lastLap > 0 && snap.Lap%d.periodicUpdateLaps == 0 {
		events = append(events, d.event(now, snap, model.KindPeriodicUpdate, model.PriorityLow,
			fmt.Sprintf("Lap %d, P%d, %.1f laps of fuel", snap.Lap, snap.Position, m.LapsOfFuel),
			model.Payload{NewPosition: snap.Position, LapsOfFuel: m.LapsOfFuel}))
	}

	if m.FuelUrgency > st.lastFuelUrgency {
		switch m.FuelUrgency {
		case strategy.UrgencyCritical:
			if !d.onCooldown(st, now, model.KindFuelCritical) {
				events = append(events, d.event(now, snap, model.KindFuelCritical, model.PriorityCritical,
					fmt.Sprintf("Box now! %.1f laps of fuel", m.LapsOfFuel),
					model.Payload{LapsOfFuel: m.LapsOfFuel}))
				st.markFired(now, model.KindFuelCritical)
			}
		case strategy.UrgencyWarning:
			if !d.onCooldown(st, now, model.KindFuelWarning) {
				events = append(events, d.event(now, snap, model.KindFuelWarning, model.PriorityMedium,
					fmt.Sprintf("Fuel getting low, %.1f laps remaining", m.LapsOfFuel),
					model.Payload{LapsOfFuel: m.LapsOfFuel}))
				st.markFired(now, model.KindFuelWarning)
			}
		}
	}
	st.lastFuelUrgency = m.FuelUrgency

	if m.TireUrgency > st.lastTireUrgency {
		corner := m.WorstWearCorner.String()
		switch m.TireUrgency {
		case strategy.UrgencyCritical:
			if !d.onCooldown(st, now, model.KindTireWearCritical) {
				events = append(events, d.event(now, snap, model.KindTireWearCritical, model.PriorityCritical,
					fmt.Sprintf("Tires critical, %s at %.0f%%", corner, m.WorstWearPct),
					model.Payload{Corner: corner, WearPct: m.WorstWearPct}))
				st.markFired(now, model.KindTireWearCritical)
			}
		case strategy.UrgencyWarning:
			if !d.onCooldown(st, now, model.KindTireWearWarning) {
				events = append(events, d.event(now, snap, model.KindTireWearWarning, model.PriorityMedium,
					fmt.Sprintf("Tires wearing, %s at %.0f%%", corner, m.WorstWearPct),
					model.Payload{Corner: corner, WearPct: m.WorstWearPct}))
				st.markFired(now, model.KindTireWearWarning)
			}
		}
	}
	st.lastTireUrgency = m.TireUrgency

	return events
}
