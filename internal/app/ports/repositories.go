package ports

import (
	"context"
	"time"

	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

type WorldRepository interface {
	GetByID(ctx context.Context, worldID string) (world.World, error)
	SaveWithVersion(ctx context.Context, w world.World, expectedVersion int64) error
}

type AgentRepository interface {
	GetByID(ctx context.Context, agentID string) (psyche.Agent, error)
	ListByWorld(ctx context.Context, worldID string) ([]psyche.Agent, error)
	Save(ctx context.Context, a psyche.Agent) error
}

type RelationshipRepository interface {
	Get(ctx context.Context, source, target string) (psyche.Relationship, error)
	ListBySource(ctx context.Context, source string) ([]psyche.Relationship, error)
	Save(ctx context.Context, r psyche.Relationship) error
}

type MemoryRepository interface {
	Append(ctx context.Context, m psyche.Memory) error
	ListByOwner(ctx context.Context, owner string, limit int) ([]psyche.Memory, error)
}

type ArcRepository interface {
	ListByOwner(ctx context.Context, owner string) ([]psyche.Arc, error)
	Save(ctx context.Context, arc psyche.Arc) error
}

type IntentionRepository interface {
	ListByOwner(ctx context.Context, owner string, includeResolved bool) ([]psyche.Intention, error)
	Save(ctx context.Context, it psyche.Intention) error
}

type CalendarRepository interface {
	ListByWorld(ctx context.Context, worldID string) ([]world.CalendarItem, error)
	Save(ctx context.Context, item world.CalendarItem) error
}

type EventRepository interface {
	Append(ctx context.Context, events []world.Event) error
	ListByWorld(ctx context.Context, worldID string, fromTick, toTick int64, limit int) ([]world.Event, error)
}

// CooldownRepository is the authoritative store behind the cognition
// cooldown; the cache layer fronts it but is never the last writer of truth.
type CooldownRepository interface {
	Get(ctx context.Context, agentID string) (untilTick int64, err error)
	Set(ctx context.Context, agentID string, untilTick int64) error
}

// CycleExecutionRecord makes user-action cycles idempotent: a replayed key
// returns the recorded outcome without re-running the cycle.
type CycleExecutionRecord struct {
	WorldID        string
	IdempotencyKey string
	Narration      string
	Degraded       bool
	AppliedAt      time.Time
}

type CycleExecutionRepository interface {
	GetByIdempotencyKey(ctx context.Context, worldID, key string) (*CycleExecutionRecord, error)
	Save(ctx context.Context, record CycleExecutionRecord) error
}
