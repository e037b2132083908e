package cycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

// runTick advances the world by one tick and pushes the resulting events
// through the numeric laws, the eligibility gate and, for the few events
// that clear it, the cognition boundary. inject, when non-nil, contributes
// externally sourced events stamped with the new tick.
func (u UseCase) runTick(ctx context.Context, st *tickState, inject func(tick int64) []world.Event) error {
	tracks := make(map[string]world.AgentTrack, len(st.simulated))
	for id, a := range st.simulated {
		tracks[id] = world.AgentTrack{Location: a.Location, Routine: a.Routine}
	}
	es := world.State{
		World:    st.world,
		Calendar: world.Calendar{Items: st.items},
		Tracks:   tracks,
	}
	events := u.Engine.AdvanceOne(&es)
	st.world = es.World
	st.items = es.Calendar.Items
	for id, tr := range es.Tracks {
		st.simulated[id].Location = tr.Location
	}

	if inject != nil {
		events = append(events, inject(st.world.Tick)...)
	}

	if err := u.autonomyPass(ctx, st, events); err != nil {
		return err
	}

	tickDegraded := false
	for i := range events {
		degraded, err := u.gateAndDecide(ctx, st, events[i])
		if err != nil {
			return err
		}
		tickDegraded = tickDegraded || degraded
		events[i].Processed = true
	}

	st.events = append(st.events, events...)
	st.degraded = st.degraded || tickDegraded
	u.meter().RecordCycle(tickDegraded)
	return nil
}

// autonomyPass applies the passive drift laws and folds every event into
// the numeric state of each simulated agent it involves, agents in id order.
func (u UseCase) autonomyPass(ctx context.Context, st *tickState, events []world.Event) error {
	for _, id := range st.order {
		a := st.simulated[id]

		resting := false
		if loc, ok := st.world.Graph.Locations[a.Location]; ok {
			resting = loc.Restful()
		}
		if err := u.Autonomy.TickDrift(a, resting); err != nil {
			return err
		}

		rels, err := u.RelRepo.ListBySource(ctx, id)
		if err != nil {
			return err
		}
		for i := range rels {
			u.Autonomy.DriftRelationship(&rels[i])
			if err := u.RelRepo.Save(ctx, rels[i]); err != nil {
				return err
			}
		}

		for _, ev := range events {
			if !ev.Involves(id) {
				continue
			}
			if err := u.Autonomy.ApplyEvent(a, ev); err != nil {
				return err
			}
			cp := counterpart(ev, id)
			if cp == "" {
				continue
			}
			rel, err := u.edge(ctx, id, cp)
			if err != nil {
				return err
			}
			u.Autonomy.ApplyRelationshipEvent(&rel, ev)
			if err := u.RelRepo.Save(ctx, rel); err != nil {
				return err
			}
		}

		arcs, err := u.ArcRepo.ListByOwner(ctx, id)
		if err != nil {
			return err
		}
		for i := range arcs {
			u.Autonomy.DecayArc(&arcs[i])
			if err := u.ArcRepo.Save(ctx, arcs[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// gateAndDecide runs the eligibility gate for every simulated vantage of
// one event and, when an agent clears it, the cognition call and the
// consequence integration. It reports whether the tick degraded to
// numeric-only for any vantage.
func (u UseCase) gateAndDecide(ctx context.Context, st *tickState, ev world.Event) (bool, error) {
	degraded := false
	for _, vantageID := range vantages(ev) {
		a, ok := st.simulated[vantageID]
		if !ok {
			// The protected participant is never a vantage; non-resident
			// ids cannot be one either.
			continue
		}

		cp := counterpart(ev, vantageID)
		var rel *psyche.Relationship
		if cp != "" {
			r, err := u.RelRepo.Get(ctx, vantageID, cp)
			switch {
			case err == nil:
				rel = &r
			case !errors.Is(err, ports.ErrNotFound):
				return degraded, err
			}
		}

		score, err := psyche.Meaningfulness(ev, *a, rel)
		if err != nil {
			return degraded, err
		}
		if score < psyche.EffectiveThreshold(*a, psyche.EligibilityThreshold) {
			continue
		}

		until, err := u.cooldownUntil(ctx, st, vantageID)
		if err != nil {
			return degraded, err
		}
		if st.world.Tick <= until {
			continue
		}
		// The cooldown starts at invocation, not completion, so a timed-out
		// call still spends the agent's slot.
		if err := u.setCooldown(ctx, st, vantageID, st.world.Tick+psyche.CooldownTicks); err != nil {
			return degraded, err
		}

		decision, ok, err := u.decide(ctx, st, a, cp, rel, ev)
		if err != nil {
			return degraded, err
		}
		if !ok {
			degraded = true
			continue
		}
		if err := u.applyDecision(ctx, st, a, decision, ev); err != nil {
			return degraded, err
		}
	}
	return degraded, nil
}

// decide produces a validated decision for one (agent, event) vantage. A
// provider failure or an invalid decision degrades the vantage to
// numeric-only; only a guard trip aborts the cycle.
func (u UseCase) decide(ctx context.Context, st *tickState, a *psyche.Agent, cp string, rel *psyche.Relationship, ev world.Event) (psyche.Decision, bool, error) {
	cacheKey := ports.CacheKeyNarrative + a.ID + ":" + ev.ID
	if u.Cache != nil {
		raw, hit := st.pendingCacheValue(cacheKey)
		if !hit {
			raw, hit, _ = u.Cache.Get(ctx, cacheKey)
		}
		if hit {
			var d psyche.Decision
			if json.Unmarshal([]byte(raw), &d) == nil &&
				psyche.ValidateDecision(d, st.isProtected) == nil && d.AgentID == a.ID {
				u.meter().RecordCacheHit()
				return d, true, nil
			}
		}
		u.meter().RecordCacheMiss()
	}

	req := ports.CognitionRequest{
		AgentID:       a.ID,
		CounterpartID: cp,
		EventID:       ev.ID,
		Kind:          ev.Kind,
		Context:       u.semanticContext(ctx, st, a, cp, rel, ev),
	}

	timeout := u.CognitionTimeout
	if timeout <= 0 {
		timeout = defaultCognitionTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	st.cognitionCalls++
	u.meter().RecordCognitionCall()
	decision, err := u.Cognition.Decide(callCtx, req)
	if err != nil {
		return psyche.Decision{}, false, nil
	}
	if err := psyche.ValidateDecision(decision, st.isProtected); err != nil {
		if errors.Is(err, psyche.ErrProtectedParticipant) {
			return psyche.Decision{}, false, err
		}
		return psyche.Decision{}, false, nil
	}
	if decision.AgentID != a.ID {
		return psyche.Decision{}, false, nil
	}
	if decision.ID == "" {
		decision.ID = stableID(st.world.ID, "decision", a.ID, ev.ID)
	}

	if u.Cache != nil {
		if raw, err := json.Marshal(decision); err == nil {
			st.bufferCacheWrite(cacheKey, string(raw), narrativeCacheTTL)
		}
	}
	return decision, true, nil
}

// semanticContext assembles the digit-free prose the cognition boundary
// receives: agent state, the relationship the event runs along, active arcs
// and open intentions.
func (u UseCase) semanticContext(ctx context.Context, st *tickState, a *psyche.Agent, cp string, rel *psyche.Relationship, ev world.Event) psyche.SemanticContext {
	fragments := psyche.DescribeAgent(*a)
	if rel != nil {
		cpName := cp
		if name, ok := st.names[cp]; ok && name != "" {
			cpName = name
		}
		fragments = append(fragments, psyche.DescribeRelationship(*rel, cpName)...)
	}
	if arcs, err := u.ArcRepo.ListByOwner(ctx, a.ID); err == nil {
		fragments = append(fragments, psyche.DescribeArcs(arcs)...)
	}
	if intentions, err := u.IntentionRepo.ListByOwner(ctx, a.ID, false); err == nil {
		fragments = append(fragments, psyche.DescribeIntentions(intentions)...)
	}

	sceneName := a.Location
	if loc, ok := st.world.Graph.Locations[a.Location]; ok && loc.Name != "" {
		sceneName = loc.Name
	}
	clock := st.world.Clock()

	return psyche.SemanticContext{
		AgentName:    a.Name,
		Fragments:    fragments,
		Scene:        fmt.Sprintf("%s, %s", sceneName, clock.PhaseAt(st.world.Tick)),
		EventSummary: eventSummary(ev),
	}
}

// applyDecision folds a validated symbolic decision into the numeric
// substrate through the law tables. All writes are owned by this method;
// nothing downstream of the cognition boundary touches numbers directly.
func (u UseCase) applyDecision(ctx context.Context, st *tickState, a *psyche.Agent, d psyche.Decision, ev world.Event) error {
	if err := u.Autonomy.ApplyStance(a, d.Stance); err != nil {
		return err
	}

	if d.RelationshipDelta != psyche.DeltaNone && d.RelationshipTarget != "" {
		rel, err := u.edge(ctx, a.ID, d.RelationshipTarget)
		if err != nil {
			return err
		}
		u.Autonomy.ApplyRelationshipDelta(&rel, d.RelationshipDelta)
		if err := u.RelRepo.Save(ctx, rel); err != nil {
			return err
		}
	}

	for i, op := range d.MemoryOps {
		m := psyche.MemoryFromOp(stableID(st.world.ID, "memory", d.ID, strconv.Itoa(i)), a.ID, st.world.Tick, op)
		if err := u.MemoryRepo.Append(ctx, m); err != nil {
			return err
		}
	}

	for i, op := range d.IntentionOps {
		switch op.Op {
		case psyche.IntentionCreate:
			it := psyche.IntentionFromOp(stableID(st.world.ID, "intention", d.ID, strconv.Itoa(i)), a.ID, op)
			if err := u.IntentionRepo.Save(ctx, it); err != nil {
				return err
			}
		case psyche.IntentionResolve:
			open, err := u.IntentionRepo.ListByOwner(ctx, a.ID, false)
			if err != nil {
				return err
			}
			for _, it := range open {
				if it.ID != op.IntentionID {
					continue
				}
				it.Resolved = true
				it.Version++
				if err := u.IntentionRepo.Save(ctx, it); err != nil {
					return err
				}
				break
			}
		}
	}

	for _, op := range d.ArcOps {
		arcs, err := u.ArcRepo.ListByOwner(ctx, a.ID)
		if err != nil {
			return err
		}
		found := false
		for _, arc := range arcs {
			if arc.Topic != op.Topic {
				continue
			}
			psyche.ReinforceArc(&arc, op)
			arc.Version++
			if err := u.ArcRepo.Save(ctx, arc); err != nil {
				return err
			}
			found = true
			break
		}
		if !found {
			arc := psyche.ArcFromOp(stableID(st.world.ID, "arc", a.ID, op.Topic), a.ID, op)
			if err := u.ArcRepo.Save(ctx, arc); err != nil {
				return err
			}
		}
	}
	return nil
}

// edge loads the directed relationship, creating a neutral one on first
// contact.
func (u UseCase) edge(ctx context.Context, source, target string) (psyche.Relationship, error) {
	rel, err := u.RelRepo.Get(ctx, source, target)
	if errors.Is(err, ports.ErrNotFound) {
		return psyche.Relationship{Source: source, Target: target, Trust: psyche.TrustMidpoint}, nil
	}
	return rel, err
}

func (u UseCase) cooldownUntil(ctx context.Context, st *tickState, agentID string) (int64, error) {
	if u.Cache != nil {
		key := ports.CacheKeyCooldown + agentID
		if raw, ok := st.pendingCacheValue(key); ok {
			if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				return v, nil
			}
		}
		if raw, hit, err := u.Cache.Get(ctx, key); err == nil && hit {
			if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				u.meter().RecordCacheHit()
				return v, nil
			}
		}
		u.meter().RecordCacheMiss()
	}
	until, err := u.CooldownRepo.Get(ctx, agentID)
	if errors.Is(err, ports.ErrNotFound) {
		return 0, nil
	}
	return until, err
}

// setCooldown writes the store inside the transaction and buffers the cache
// write for after commit; the cache is a front, never the source of truth.
func (u UseCase) setCooldown(ctx context.Context, st *tickState, agentID string, until int64) error {
	if err := u.CooldownRepo.Set(ctx, agentID, until); err != nil {
		return err
	}
	if u.Cache != nil {
		st.bufferCacheWrite(ports.CacheKeyCooldown+agentID, strconv.FormatInt(until, 10), cooldownCacheTTL)
	}
	return nil
}

func vantages(ev world.Event) []string {
	if ev.Target == "" || ev.Target == ev.Source {
		return []string{ev.Source}
	}
	return []string{ev.Source, ev.Target}
}

func counterpart(ev world.Event, agentID string) string {
	other := ev.Target
	if agentID == ev.Target {
		other = ev.Source
	}
	if other == agentID {
		return ""
	}
	return other
}

func eventSummary(ev world.Event) string {
	switch {
	case ev.Payload.Text != "":
		return ev.Payload.Text
	case ev.Payload.Description != "":
		return ev.Payload.Description
	default:
		return strings.ReplaceAll(string(ev.Kind), "_", " ")
	}
}

// stableID derives a replay-stable UUID from its parts.
func stableID(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, "/"))).String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp11(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
