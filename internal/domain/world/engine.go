package world

import (
	"fmt"
	"sort"
)

// AgentTrack is the engine-side view of one simulated agent: where they are
// and the routine that moves them. Psychology lives elsewhere; the engine
// only needs placement. The protected participant never has a track.
type AgentTrack struct {
	Location string
	Routine  RoutineTable
}

// State is the full deterministic input of one advancement step.
type State struct {
	World    World
	Calendar Calendar
	Tracks   map[string]AgentTrack
}

type Engine struct {
	// ReminderLeads are tick distances before a calendar item's start at
	// which one reminder each fires.
	ReminderLeads []int64
}

// AdvanceOne advances the world by exactly one tick and returns the events
// of that tick in the fixed total order: calendar reminders, calendar
// misses, incursions, movement. Two runs from identical state produce
// identical events and identical agent locations.
func (e Engine) AdvanceOne(st *State) []Event {
	st.World.Tick++
	tick := st.World.Tick
	clock := st.World.Clock()

	events := st.Calendar.Tick(st.World.ID, tick, e.ReminderLeads)

	incCtx := IncursionContext{
		Phase:          clock.PhaseAt(tick),
		AgentLocations: trackLocations(st.Tracks),
	}
	events = append(events, Incursions(st.World.ID, tick, incCtx)...)

	events = append(events, e.moveAgents(st, tick, clock)...)
	return events
}

// Advance runs n single-tick steps and returns all events in tick order.
func (e Engine) Advance(st *State, n int64) []Event {
	out := make([]Event, 0)
	for i := int64(0); i < n; i++ {
		out = append(out, e.AdvanceOne(st)...)
	}
	return out
}

func (e Engine) moveAgents(st *State, tick int64, clock Clock) []Event {
	ids := make([]string, 0, len(st.Tracks))
	for id := range st.Tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	hour := clock.HourAt(tick)
	events := make([]Event, 0)
	for _, id := range ids {
		track := st.Tracks[id]
		dest, ok := track.Routine.LocationAt(hour)
		if !ok || dest == track.Location {
			continue
		}
		from := track.Location
		track.Location = dest
		st.Tracks[id] = track
		events = append(events, Event{
			ID:      deterministicID(st.World.ID, fmt.Sprintf("move:%d:%s", tick, id)),
			WorldID: st.World.ID,
			Tick:    tick,
			Kind:    EventMovement,
			Source:  id,
			Target:  id,
			Payload: EventPayload{
				Magnitude:   0.05,
				Novelty:     0.05,
				Location:    dest,
				TimeOfDay:   clock.PhaseAt(tick),
				Topic:       "routine_move",
				Description: fmt.Sprintf("moves from %s to %s", from, dest),
			},
		})
	}
	return events
}

func trackLocations(tracks map[string]AgentTrack) map[string]string {
	out := make(map[string]string, len(tracks))
	for id, t := range tracks {
		out[id] = t.Location
	}
	return out
}
