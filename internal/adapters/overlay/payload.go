package overlay

import (
	"time"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/internal/domain/strategy"
)

// TireView is the per-corner overlay block.
type TireView struct {
	WearPct  float64 `json:"wear_pct"`
	TempC    float64 `json:"temp_c"`
	Band     string  `json:"band"`
	Severity string  `json:"severity"`
}

// EventView is the overlay-facing shape of an emitted event.
type EventView struct {
	Kind     string `json:"kind"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Lap      int    `json:"lap"`
}

// State is the JSON document pushed to overlay clients each tick.
type State struct {
	Timestamp time.Time `json:"timestamp"`
	Lap       int       `json:"lap"`
	Position  int       `json:"position"`
	Flag      string    `json:"flag"`

	GapAhead  *float64 `json:"gap_ahead,omitempty"`
	GapBehind *float64 `json:"gap_behind,omitempty"`

	FuelLevel  float64 `json:"fuel_level"`
	LapsOfFuel float64 `json:"laps_of_fuel"`
	FuelKnown  bool    `json:"fuel_known"`

	Tires map[string]TireView `json:"tires"`

	Pace      string  `json:"pace"`
	PaceDelta float64 `json:"pace_delta"`

	Urgency   string `json:"urgency"`
	NeedsPit  bool   `json:"needs_pit"`
	PitReason string `json:"pit_reason,omitempty"`

	Events []EventView `json:"events,omitempty"`
}

// BuildState assembles the overlay document for one tick.
func BuildState(snap model.Snapshot, m strategy.Metrics, events []model.Event) State {
	st := State{
		Timestamp:  snap.Timestamp,
		Lap:        snap.Lap,
		Position:   snap.Position,
		Flag:       snap.Flag.String(),
		GapAhead:   snap.GapAhead,
		GapBehind:  snap.GapBehind,
		FuelLevel:  snap.FuelLevel,
		LapsOfFuel: m.LapsOfFuel,
		FuelKnown:  m.FuelKnown,
		Tires:      make(map[string]TireView, len(model.Corners)),
		Pace:       m.Pace.String(),
		PaceDelta:  m.PaceDelta,
		Urgency:    m.Urgency.String(),
		NeedsPit:   m.NeedsPit,
	}
	if m.PitReason != strategy.ReasonNone {
		st.PitReason = m.PitReason.String()
	}
	for _, c := range model.Corners {
		st.Tires[c.String()] = TireView{
			WearPct:  snap.TireWear[c],
			TempC:    snap.CornerTemp(c),
			Band:     m.TempBand[c].String(),
			Severity: m.WearSeverity[c].String(),
		}
	}
	for _, e := range events {
		st.Events = append(st.Events, EventView{
			Kind:     e.Kind.String(),
			Priority: e.Priority.String(),
			Message:  e.Message,
			Lap:      e.Lap,
		})
	}
	return st
}
