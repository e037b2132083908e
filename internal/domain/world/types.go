package world

import "time"

type LocationKind string

const (
	LocationHome    LocationKind = "home"
	LocationWork    LocationKind = "work"
	LocationSocial  LocationKind = "social"
	LocationTransit LocationKind = "transit"
)

type Location struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind LocationKind `json:"kind"`
}

// Restful locations let agents recover energy during passive ticks.
func (l Location) Restful() bool {
	return l.Kind == LocationHome
}

// Graph is the static location graph of a world. Edges are undirected.
type Graph struct {
	Locations map[string]Location `json:"locations"`
	Edges     map[string][]string `json:"edges"`
}

func (g Graph) Contains(id string) bool {
	_, ok := g.Locations[id]
	return ok
}

type RoutineEntry struct {
	FromHour int    `json:"from_hour"`
	ToHour   int    `json:"to_hour"`
	Location string `json:"location"`
}

// RoutineTable maps time of day to the location an agent occupies. Entries
// are half-open [FromHour, ToHour) ranges; ranges wrapping midnight use
// FromHour > ToHour. The first match wins; no match keeps the agent where
// they are.
type RoutineTable []RoutineEntry

func (rt RoutineTable) LocationAt(hour int) (string, bool) {
	for _, e := range rt {
		if e.FromHour <= e.ToHour {
			if hour >= e.FromHour && hour < e.ToHour {
				return e.Location, true
			}
			continue
		}
		if hour >= e.FromHour || hour < e.ToHour {
			return e.Location, true
		}
	}
	return "", false
}

// World is the aggregate root of one simulation. Only the engine mutates it,
// and persistence uses optimistic versioning on the whole aggregate so
// concurrent cycles for the same world serialize.
type World struct {
	ID        string        `json:"id"`
	Tick      int64         `json:"tick"`
	BaseTime  time.Time     `json:"base_time"`
	TickStep  time.Duration `json:"tick_step"`
	Graph     Graph         `json:"graph"`
	Version   int64         `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (w World) Clock() Clock {
	return NewClock(ClockConfig{BaseTime: w.BaseTime, TickStep: w.TickStep})
}

func (w World) Now() time.Time {
	return w.Clock().TimeAt(w.Tick)
}
