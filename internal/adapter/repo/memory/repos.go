package memory

import (
	"context"
	"sort"

	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

type WorldRepo struct{ store *Store }

func NewWorldRepo(store *Store) WorldRepo { return WorldRepo{store: store} }

func (r WorldRepo) GetByID(_ context.Context, worldID string) (world.World, error) {
	w, ok := r.store.worlds[worldID]
	if !ok {
		return world.World{}, ports.ErrNotFound
	}
	return w, nil
}

func (r WorldRepo) SaveWithVersion(_ context.Context, w world.World, expectedVersion int64) error {
	current, ok := r.store.worlds[w.ID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.worlds[w.ID] = w
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.worlds[w.ID] = w
	return nil
}

type AgentRepo struct{ store *Store }

func NewAgentRepo(store *Store) AgentRepo { return AgentRepo{store: store} }

func (r AgentRepo) GetByID(_ context.Context, agentID string) (psyche.Agent, error) {
	a, ok := r.store.agents[agentID]
	if !ok {
		return psyche.Agent{}, ports.ErrNotFound
	}
	return a, nil
}

func (r AgentRepo) ListByWorld(_ context.Context, worldID string) ([]psyche.Agent, error) {
	out := []psyche.Agent{}
	for _, a := range r.store.agents {
		if a.WorldID == worldID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r AgentRepo) Save(_ context.Context, a psyche.Agent) error {
	r.store.agents[a.ID] = a
	return nil
}

type RelationshipRepo struct{ store *Store }

func NewRelationshipRepo(store *Store) RelationshipRepo { return RelationshipRepo{store: store} }

func (r RelationshipRepo) Get(_ context.Context, source, target string) (psyche.Relationship, error) {
	rel, ok := r.store.relationships[relKey(source, target)]
	if !ok {
		return psyche.Relationship{}, ports.ErrNotFound
	}
	return rel, nil
}

func (r RelationshipRepo) ListBySource(_ context.Context, source string) ([]psyche.Relationship, error) {
	out := []psyche.Relationship{}
	for _, rel := range r.store.relationships {
		if rel.Source == source {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out, nil
}

func (r RelationshipRepo) Save(_ context.Context, rel psyche.Relationship) error {
	r.store.relationships[relKey(rel.Source, rel.Target)] = rel
	return nil
}

type MemoryRepo struct{ store *Store }

func NewMemoryRepo(store *Store) MemoryRepo { return MemoryRepo{store: store} }

func (r MemoryRepo) Append(_ context.Context, m psyche.Memory) error {
	r.store.memories[m.Owner] = append(r.store.memories[m.Owner], m)
	return nil
}

func (r MemoryRepo) ListByOwner(_ context.Context, owner string, limit int) ([]psyche.Memory, error) {
	rows := r.store.memories[owner]
	out := make([]psyche.Memory, len(rows))
	copy(out, rows)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type ArcRepo struct{ store *Store }

func NewArcRepo(store *Store) ArcRepo { return ArcRepo{store: store} }

func (r ArcRepo) ListByOwner(_ context.Context, owner string) ([]psyche.Arc, error) {
	rows := r.store.arcs[owner]
	out := make([]psyche.Arc, len(rows))
	copy(out, rows)
	return out, nil
}

func (r ArcRepo) Save(_ context.Context, arc psyche.Arc) error {
	rows := r.store.arcs[arc.Owner]
	for i := range rows {
		if rows[i].ID == arc.ID {
			rows[i] = arc
			return nil
		}
	}
	r.store.arcs[arc.Owner] = append(rows, arc)
	return nil
}

type IntentionRepo struct{ store *Store }

func NewIntentionRepo(store *Store) IntentionRepo { return IntentionRepo{store: store} }

func (r IntentionRepo) ListByOwner(_ context.Context, owner string, includeResolved bool) ([]psyche.Intention, error) {
	out := []psyche.Intention{}
	for _, it := range r.store.intentions[owner] {
		if !includeResolved && it.Resolved {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (r IntentionRepo) Save(_ context.Context, it psyche.Intention) error {
	rows := r.store.intentions[it.Owner]
	for i := range rows {
		if rows[i].ID == it.ID {
			rows[i] = it
			return nil
		}
	}
	r.store.intentions[it.Owner] = append(rows, it)
	return nil
}

type CalendarRepo struct{ store *Store }

func NewCalendarRepo(store *Store) CalendarRepo { return CalendarRepo{store: store} }

func (r CalendarRepo) ListByWorld(_ context.Context, worldID string) ([]world.CalendarItem, error) {
	rows := r.store.calendars[worldID]
	out := make([]world.CalendarItem, len(rows))
	copy(out, rows)
	return out, nil
}

func (r CalendarRepo) Save(_ context.Context, item world.CalendarItem) error {
	rows := r.store.calendars[item.WorldID]
	for i := range rows {
		if rows[i].ID == item.ID {
			rows[i] = item
			return nil
		}
	}
	r.store.calendars[item.WorldID] = append(rows, item)
	return nil
}

type EventRepo struct{ store *Store }

func NewEventRepo(store *Store) EventRepo { return EventRepo{store: store} }

func (r EventRepo) Append(_ context.Context, events []world.Event) error {
	for _, e := range events {
		r.store.events[e.WorldID] = append(r.store.events[e.WorldID], e)
	}
	return nil
}

func (r EventRepo) ListByWorld(_ context.Context, worldID string, fromTick, toTick int64, limit int) ([]world.Event, error) {
	out := []world.Event{}
	for _, e := range r.store.events[worldID] {
		if fromTick > 0 && e.Tick < fromTick {
			continue
		}
		if toTick > 0 && e.Tick > toTick {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type CooldownRepo struct{ store *Store }

func NewCooldownRepo(store *Store) CooldownRepo { return CooldownRepo{store: store} }

func (r CooldownRepo) Get(_ context.Context, agentID string) (int64, error) {
	until, ok := r.store.cooldowns[agentID]
	if !ok {
		return 0, ports.ErrNotFound
	}
	return until, nil
}

func (r CooldownRepo) Set(_ context.Context, agentID string, untilTick int64) error {
	r.store.cooldowns[agentID] = untilTick
	return nil
}

type CycleExecutionRepo struct{ store *Store }

func NewCycleExecutionRepo(store *Store) CycleExecutionRepo {
	return CycleExecutionRepo{store: store}
}

func (r CycleExecutionRepo) GetByIdempotencyKey(_ context.Context, worldID, key string) (*ports.CycleExecutionRecord, error) {
	rec, ok := r.store.executions[execKey(worldID, key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &rec, nil
}

func (r CycleExecutionRepo) Save(_ context.Context, record ports.CycleExecutionRecord) error {
	r.store.executions[execKey(record.WorldID, record.IdempotencyKey)] = record
	return nil
}
