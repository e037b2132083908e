// Package observe renders one agent's state as semantic prose. It is the
// only read surface for psychology and it never exposes the numeric
// substrate; observers get the same bucketed fragments cognition gets.
package observe

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
)

var ErrInvalidRequest = errors.New("invalid observe request")

const (
	recentMemoryLimit = 5
	snapshotCacheTTL  = 10 * time.Minute
)

type UseCase struct {
	TxManager     ports.TxManager
	WorldRepo     ports.WorldRepository
	AgentRepo     ports.AgentRepository
	RelRepo       ports.RelationshipRepository
	ArcRepo       ports.ArcRepository
	IntentionRepo ports.IntentionRepository
	MemoryRepo    ports.MemoryRepository
	Cache         ports.Cache
	Metrics       ports.CycleMetrics
}

type Request struct {
	WorldID string `json:"world_id"`
	AgentID string `json:"agent_id"`
}

type Response struct {
	AgentID   string    `json:"agent_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Tick      int64     `json:"tick"`
	ClockTime time.Time `json:"clock_time"`
	Fragments []string  `json:"fragments"`
	Memories  []string  `json:"memories,omitempty"`
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.WorldID == "" || req.AgentID == "" {
		return Response{}, ErrInvalidRequest
	}

	var out Response
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		w, err := u.WorldRepo.GetByID(txCtx, req.WorldID)
		if err != nil {
			return err
		}
		a, err := u.AgentRepo.GetByID(txCtx, req.AgentID)
		if err != nil {
			return err
		}
		if a.WorldID != req.WorldID {
			return ports.ErrNotFound
		}
		// Observation of the real participant's simulated state is a
		// contradiction in terms; there is nothing simulated to observe.
		if err := psyche.EnsureSimulated(a, "observe.Execute"); err != nil {
			return err
		}

		// A snapshot is stable for a given (agent version, tick), so it
		// caches safely under that pair.
		cacheKey := ports.CacheKeySalience + a.ID + ":" +
			strconv.FormatInt(a.Version, 10) + ":" + strconv.FormatInt(w.Tick, 10)
		if u.Cache != nil {
			if raw, hit, cerr := u.Cache.Get(txCtx, cacheKey); cerr == nil && hit {
				var cached Response
				if json.Unmarshal([]byte(raw), &cached) == nil {
					u.recordHit()
					out = cached
					return nil
				}
			}
			u.recordMiss()
		}

		fragments := psyche.DescribeAgent(a)

		rels, err := u.RelRepo.ListBySource(txCtx, a.ID)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			targetName := rel.Target
			if other, aerr := u.AgentRepo.GetByID(txCtx, rel.Target); aerr == nil && other.Name != "" {
				targetName = other.Name
			}
			fragments = append(fragments, psyche.DescribeRelationship(rel, targetName)...)
		}

		arcs, err := u.ArcRepo.ListByOwner(txCtx, a.ID)
		if err != nil {
			return err
		}
		fragments = append(fragments, psyche.DescribeArcs(arcs)...)

		intentions, err := u.IntentionRepo.ListByOwner(txCtx, a.ID, false)
		if err != nil {
			return err
		}
		fragments = append(fragments, psyche.DescribeIntentions(intentions)...)

		memories, err := u.MemoryRepo.ListByOwner(txCtx, a.ID, recentMemoryLimit)
		if err != nil {
			return err
		}
		texts := make([]string, 0, len(memories))
		for _, m := range memories {
			texts = append(texts, m.Text)
		}

		out = Response{
			AgentID:   a.ID,
			Name:      a.Name,
			Location:  a.Location,
			Tick:      w.Tick,
			ClockTime: w.Now(),
			Fragments: fragments,
			Memories:  texts,
		}
		if u.Cache != nil {
			if raw, merr := json.Marshal(out); merr == nil {
				_ = u.Cache.Set(txCtx, cacheKey, string(raw), snapshotCacheTTL)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, psyche.ErrProtectedParticipant) && u.Metrics != nil {
			u.Metrics.RecordGuardTrip()
		}
		return Response{}, err
	}
	return out, nil
}

func (u UseCase) recordHit() {
	if u.Metrics != nil {
		u.Metrics.RecordCacheHit()
	}
}

func (u UseCase) recordMiss() {
	if u.Metrics != nil {
		u.Metrics.RecordCacheMiss()
	}
}
