// Package cycle is the orchestrator: it advances a world tick by tick and
// runs the full pipeline per tick (engine events, autonomy laws,
// eligibility gate, cognition call, consequence integration) inside one
// transaction, so a cycle either lands whole or not at all.
package cycle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid cycle request")

const (
	defaultCognitionTimeout = 10 * time.Second
	cooldownCacheTTL        = 5 * time.Minute
	narrativeCacheTTL       = 10 * time.Minute
)

type UseCase struct {
	TxManager     ports.TxManager
	WorldRepo     ports.WorldRepository
	AgentRepo     ports.AgentRepository
	RelRepo       ports.RelationshipRepository
	MemoryRepo    ports.MemoryRepository
	ArcRepo       ports.ArcRepository
	IntentionRepo ports.IntentionRepository
	CalendarRepo  ports.CalendarRepository
	EventRepo     ports.EventRepository
	CooldownRepo  ports.CooldownRepository
	ExecRepo      ports.CycleExecutionRepository
	Cache         ports.Cache
	Cognition     ports.CognitionProvider
	Metrics       ports.CycleMetrics
	Locks         *LockSet

	Autonomy psyche.AutonomyService
	Engine   world.Engine

	CognitionTimeout time.Duration
	Now              func() time.Time
}

type AdvanceRequest struct {
	WorldID string `json:"world_id"`
	Ticks   int64  `json:"ticks"`
}

type AdvanceResponse struct {
	WorldID        string        `json:"world_id"`
	Tick           int64         `json:"tick"`
	ClockTime      time.Time     `json:"clock_time"`
	Events         []world.Event `json:"events"`
	CognitionCalls int           `json:"cognition_calls"`
	Degraded       bool          `json:"degraded"`
}

// ActionRequest is a real-participant action directed at a simulated agent.
// Its numeric axes come from the outer API, not from cognition, so raw
// values are legitimate here; they are clamped before entering the world.
type ActionRequest struct {
	WorldID        string  `json:"world_id"`
	ActorID        string  `json:"actor_id"`
	TargetID       string  `json:"target_id"`
	IdempotencyKey string  `json:"idempotency_key"`
	Text           string  `json:"text"`
	Topic          string  `json:"topic,omitempty"`
	Magnitude      float64 `json:"magnitude,omitempty"`
	Valence        float64 `json:"valence,omitempty"`
	Conflict       float64 `json:"conflict,omitempty"`
}

type ActionResponse struct {
	Tick      int64  `json:"tick"`
	Narration string `json:"narration"`
	Degraded  bool   `json:"degraded"`
	Replayed  bool   `json:"replayed"`
}

// Advance moves the world forward by the requested number of ticks.
func (u UseCase) Advance(ctx context.Context, req AdvanceRequest) (AdvanceResponse, error) {
	if req.WorldID == "" || req.Ticks <= 0 {
		return AdvanceResponse{}, ErrInvalidRequest
	}
	if u.Locks != nil {
		unlock := u.Locks.Lock(req.WorldID)
		defer unlock()
	}

	var out AdvanceResponse
	var st *tickState
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		st, err = u.loadState(txCtx, req.WorldID)
		if err != nil {
			return err
		}
		for i := int64(0); i < req.Ticks; i++ {
			if err := u.runTick(txCtx, st, nil); err != nil {
				return err
			}
		}
		if err := u.persist(txCtx, st); err != nil {
			return err
		}
		out = AdvanceResponse{
			WorldID:        st.world.ID,
			Tick:           st.world.Tick,
			ClockTime:      st.world.Now(),
			Events:         st.events,
			CognitionCalls: st.cognitionCalls,
			Degraded:       st.degraded,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, psyche.ErrProtectedParticipant) {
			u.meter().RecordGuardTrip()
		}
		return AdvanceResponse{}, err
	}
	u.flushCacheWrites(ctx, st)
	return out, nil
}

// HandleAction injects one participant action as a world event and runs a
// single-tick cycle around it. Replaying the same idempotency key returns
// the recorded outcome without re-running anything.
func (u UseCase) HandleAction(ctx context.Context, req ActionRequest) (ActionResponse, error) {
	req.WorldID = strings.TrimSpace(req.WorldID)
	req.ActorID = strings.TrimSpace(req.ActorID)
	req.TargetID = strings.TrimSpace(req.TargetID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.WorldID == "" || req.ActorID == "" || req.TargetID == "" ||
		req.IdempotencyKey == "" || strings.TrimSpace(req.Text) == "" ||
		req.ActorID == req.TargetID {
		return ActionResponse{}, ErrInvalidRequest
	}
	if u.Locks != nil {
		unlock := u.Locks.Lock(req.WorldID)
		defer unlock()
	}

	var out ActionResponse
	var st *tickState
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if u.ExecRepo != nil {
			rec, err := u.ExecRepo.GetByIdempotencyKey(txCtx, req.WorldID, req.IdempotencyKey)
			if err == nil && rec != nil {
				out = ActionResponse{Narration: rec.Narration, Degraded: rec.Degraded, Replayed: true}
				return nil
			}
			if err != nil && !errors.Is(err, ports.ErrNotFound) {
				return err
			}
		}

		var err error
		st, err = u.loadState(txCtx, req.WorldID)
		if err != nil {
			return err
		}
		target, ok := st.simulated[req.TargetID]
		if !ok {
			if st.isProtected(req.TargetID) {
				return &psyche.GuardTrip{AgentID: req.TargetID, Op: "cycle.HandleAction"}
			}
			return ports.ErrNotFound
		}

		inject := func(tick int64) []world.Event {
			return []world.Event{actionEvent(req, st.world.ID, tick)}
		}
		if err := u.runTick(txCtx, st, inject); err != nil {
			return err
		}
		if err := u.persist(txCtx, st); err != nil {
			return err
		}

		narration := strings.Join(psyche.DescribeAgent(*target), "; ")
		out = ActionResponse{Tick: st.world.Tick, Narration: narration, Degraded: st.degraded}

		if u.ExecRepo != nil {
			return u.ExecRepo.Save(txCtx, ports.CycleExecutionRecord{
				WorldID:        req.WorldID,
				IdempotencyKey: req.IdempotencyKey,
				Narration:      narration,
				Degraded:       st.degraded,
				AppliedAt:      u.now(),
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, psyche.ErrProtectedParticipant) {
			u.meter().RecordGuardTrip()
		}
		return ActionResponse{}, err
	}
	u.flushCacheWrites(ctx, st)
	return out, nil
}

// tickState carries one world's mutable aggregate across the per-tick
// pipeline. The protected participant appears only in names; their
// psychology is never loaded from this struct.
type tickState struct {
	world         world.World
	loadedVersion int64
	items         []world.CalendarItem
	simulated     map[string]*psyche.Agent
	order         []string
	names         map[string]string
	protectedID   string

	events         []world.Event
	cognitionCalls int
	degraded       bool
	cacheWrites    []cacheWrite
}

func (st *tickState) isProtected(id string) bool {
	return id != "" && id == st.protectedID
}

// cacheWrite is a cache mutation buffered until the cycle's transaction
// commits. Writing through immediately would let a rolled-back cycle leak
// cooldowns and cached decisions into later runs.
type cacheWrite struct {
	key   string
	value string
	ttl   time.Duration
}

func (st *tickState) bufferCacheWrite(key, value string, ttl time.Duration) {
	st.cacheWrites = append(st.cacheWrites, cacheWrite{key: key, value: value, ttl: ttl})
}

// pendingCacheValue lets reads later in the same transaction see writes
// buffered earlier in it. Last write per key wins.
func (st *tickState) pendingCacheValue(key string) (string, bool) {
	for i := len(st.cacheWrites) - 1; i >= 0; i-- {
		if st.cacheWrites[i].key == key {
			return st.cacheWrites[i].value, true
		}
	}
	return "", false
}

func (u UseCase) flushCacheWrites(ctx context.Context, st *tickState) {
	if u.Cache == nil || st == nil {
		return
	}
	for _, w := range st.cacheWrites {
		_ = u.Cache.Set(ctx, w.key, w.value, w.ttl)
	}
}

func (u UseCase) loadState(ctx context.Context, worldID string) (*tickState, error) {
	w, err := u.WorldRepo.GetByID(ctx, worldID)
	if err != nil {
		return nil, err
	}
	agents, err := u.AgentRepo.ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	items, err := u.CalendarRepo.ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}

	st := &tickState{
		world:         w,
		loadedVersion: w.Version,
		items:         items,
		simulated:     make(map[string]*psyche.Agent, len(agents)),
		names:         make(map[string]string, len(agents)),
	}
	for i := range agents {
		a := agents[i]
		st.names[a.ID] = a.Name
		if a.Protected {
			st.protectedID = a.ID
			continue
		}
		st.simulated[a.ID] = &a
		st.order = append(st.order, a.ID)
	}
	sort.Strings(st.order)
	return st, nil
}

func (u UseCase) persist(ctx context.Context, st *tickState) error {
	now := u.now()
	for _, id := range st.order {
		a := st.simulated[id]
		a.Version++
		a.UpdatedAt = now
		if err := u.AgentRepo.Save(ctx, *a); err != nil {
			return err
		}
	}
	for _, it := range st.items {
		if err := u.CalendarRepo.Save(ctx, it); err != nil {
			return err
		}
	}
	if len(st.events) > 0 {
		if err := u.EventRepo.Append(ctx, st.events); err != nil {
			return err
		}
	}
	st.world.Version = st.loadedVersion + 1
	st.world.UpdatedAt = now
	return u.WorldRepo.SaveWithVersion(ctx, st.world, st.loadedVersion)
}

func actionEvent(req ActionRequest, worldID string, tick int64) world.Event {
	mag := clamp01(req.Magnitude)
	if mag == 0 {
		mag = 0.5
	}
	return world.Event{
		ID:      stableID(worldID, "action", req.IdempotencyKey),
		WorldID: worldID,
		Tick:    tick,
		Kind:    world.EventUserAction,
		Source:  req.ActorID,
		Target:  req.TargetID,
		Payload: world.EventPayload{
			Magnitude:    mag,
			Valence:      clamp11(req.Valence),
			Conflict:     clamp01(req.Conflict),
			Novelty:      0.3,
			DriveImpacts: map[string]float64{string(psyche.DriveConnection): 0.4 * mag},
			Topic:        req.Topic,
			Text:         req.Text,
			Description:  req.Text,
		},
	}
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u UseCase) meter() ports.CycleMetrics {
	if u.Metrics != nil {
		return u.Metrics
	}
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordCycle(bool)      {}
func (nopMetrics) RecordCognitionCall()  {}
func (nopMetrics) RecordGuardTrip()      {}
func (nopMetrics) RecordCacheHit()       {}
func (nopMetrics) RecordCacheMiss()      {}
