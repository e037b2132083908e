package memory

import (
	"sync"

	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

// Store backs the whole repository set with in-process maps. The TxManager
// holds the store mutex for the duration of a cycle, which also gives tests
// the per-world serialization the gorm adapter gets from transactions.
type Store struct {
	mu            sync.Mutex
	worlds        map[string]world.World
	agents        map[string]psyche.Agent
	relationships map[string]psyche.Relationship
	memories      map[string][]psyche.Memory
	arcs          map[string][]psyche.Arc
	intentions    map[string][]psyche.Intention
	calendars     map[string][]world.CalendarItem
	events        map[string][]world.Event
	cooldowns     map[string]int64
	executions    map[string]ports.CycleExecutionRecord
}

func NewStore() *Store {
	return &Store{
		worlds:        make(map[string]world.World),
		agents:        make(map[string]psyche.Agent),
		relationships: make(map[string]psyche.Relationship),
		memories:      make(map[string][]psyche.Memory),
		arcs:          make(map[string][]psyche.Arc),
		intentions:    make(map[string][]psyche.Intention),
		calendars:     make(map[string][]world.CalendarItem),
		events:        make(map[string][]world.Event),
		cooldowns:     make(map[string]int64),
		executions:    make(map[string]ports.CycleExecutionRecord),
	}
}

func relKey(source, target string) string {
	return source + "->" + target
}

func execKey(worldID, key string) string {
	return worldID + "::" + key
}

func (s *Store) SeedWorld(w world.World) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worlds[w.ID] = w
}

func (s *Store) SeedAgent(a psyche.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.ID] = a
}

func (s *Store) SeedRelationship(r psyche.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationships[relKey(r.Source, r.Target)] = r
}

func (s *Store) SeedCalendarItem(it world.CalendarItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[it.WorldID] = append(s.calendars[it.WorldID], it)
}
