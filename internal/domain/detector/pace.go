package detector

import (
	"fmt"
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
)

// detectPace reports pace-trend transitions and new personal bests. The
// trend itself is computed by the strategy calculator; this only fires on
// the edge between trend classifications. A transition back to stable is
// silent.
func (d *Detector) detectPace(now time.Time, snap model.Snapshot, m strategy.Metrics, st *State) []model.Event {
	var events []model.Event

	// Every new best is worth reporting; the best-lap edge is its only gate.
	if d.personalBest && st.hasBestLap && snap.BestLapTime > 0 && snap.BestLapTime < st.lastBestLap {
		events = append(events, d.event(now, snap, model.KindPersonalBest, model.PriorityMedium,
			fmt.Sprintf("Personal best! %.3f", snap.BestLapTime),
			model.Payload{LapTime: snap.BestLapTime}))
	}

	if m.Pace != st.lastPace {
		switch m.Pace {
		case strategy.PaceDropping:
			if !d.onCooldown(st, now, model.KindPaceDropping) {
				events = append(events, d.event(now, snap, model.KindPaceDropping, model.PriorityMedium,
					fmt.Sprintf("Pace dropping, %.1fs slower", m.PaceDelta),
					model.Payload{PaceDelta: m.PaceDelta}))
				st.markFired(now, model.KindPaceDropping)
			}
		case strategy.PaceImproving:
			if !d.onCooldown(st, now, model.KindPaceImproving) {
				events = append(events, d.event(now, snap, model.KindPaceImproving, model.PriorityLow,
					fmt.Sprintf("Found some pace, %.1fs faster", -m.PaceDelta),
					model.Payload{PaceDelta: m.PaceDelta}))
				st.markFired(now, model.KindPaceImproving)
			}
		}
		st.lastPace = m.Pace
	}

	return events
}
