package world

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
)

// incursionTemplate is a grounded unscheduled-event shape. Valence, conflict
// and drive impacts are nominal values the autonomy laws consume.
type incursionTemplate struct {
	topic        string
	description  string
	magnitude    float64
	valence      float64
	conflict     float64
	novelty      float64
	workload     bool
	driveImpacts map[string]float64
	phases       []Phase
	pair         bool
}

var incursionTemplates = []incursionTemplate{
	{
		topic:       "small_win",
		description: "stumbles onto a small piece of good news",
		magnitude:   0.25, valence: 0.5, novelty: 0.4,
		driveImpacts: map[string]float64{"achievement": 0.2},
		phases:       []Phase{PhaseMorning, PhaseAfternoon},
	},
	{
		topic:       "minor_setback",
		description: "hits an annoying snag in the day's plans",
		magnitude:   0.3, valence: -0.4, conflict: 0.2, novelty: 0.3, workload: true,
		driveImpacts: map[string]float64{"rest": -0.15, "achievement": -0.1},
		phases:       []Phase{PhaseMorning, PhaseAfternoon, PhaseEvening},
	},
	{
		topic:       "chance_meeting",
		description: "runs into someone unexpectedly",
		magnitude:   0.35, valence: 0.3, novelty: 0.6,
		driveImpacts: map[string]float64{"connection": 0.25},
		phases:       []Phase{PhaseAfternoon, PhaseEvening},
		pair:         true,
	},
	{
		topic:       "overheard_friction",
		description: "overhears a tense exchange nearby",
		magnitude:   0.4, valence: -0.3, conflict: 0.5, novelty: 0.5,
		driveImpacts: map[string]float64{"safety": -0.2},
		phases:       []Phase{PhaseEvening, PhaseNight},
		pair:         true,
	},
	{
		topic:       "restless_night",
		description: "cannot settle down and sleep",
		magnitude:   0.3, valence: -0.2, novelty: 0.1,
		driveImpacts: map[string]float64{"rest": -0.3},
		phases:       []Phase{PhaseNight},
	},
}

// IncursionContext is the grounding data the generator draws from. Agent
// locations must exclude the protected participant; incursions never select
// them as a subject.
type IncursionContext struct {
	Phase          Phase
	AgentLocations map[string]string
}

// Incursions derives the unscheduled events for one tick from a PRNG seeded
// by (world id, tick). Identical world state yields an identical set; the
// generator never touches ambient randomness.
func Incursions(worldID string, tick int64, ctx IncursionContext) []Event {
	agents := make([]string, 0, len(ctx.AgentLocations))
	for id := range ctx.AgentLocations {
		agents = append(agents, id)
	}
	sort.Strings(agents)
	if len(agents) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(incursionSeed(worldID, tick)))

	count := 0
	switch roll := rng.Float64(); {
	case roll < 0.55:
		count = 0
	case roll < 0.9:
		count = 1
	default:
		count = 2
	}

	candidates := templatesForPhase(ctx.Phase)
	if len(candidates) == 0 {
		return nil
	}

	out := make([]Event, 0, count)
	for n := 0; n < count; n++ {
		tpl := candidates[rng.Intn(len(candidates))]
		source := agents[rng.Intn(len(agents))]
		target := source
		if tpl.pair && len(agents) > 1 {
			for target == source {
				target = agents[rng.Intn(len(agents))]
			}
		}
		loc := ctx.AgentLocations[source]
		out = append(out, Event{
			ID:      deterministicID(worldID, fmt.Sprintf("inc:%d:%d:%s", tick, n, tpl.topic)),
			WorldID: worldID,
			Tick:    tick,
			Kind:    EventIncursion,
			Source:  source,
			Target:  target,
			Payload: EventPayload{
				Magnitude:    tpl.magnitude,
				Valence:      tpl.valence,
				Conflict:     tpl.conflict,
				Novelty:      tpl.novelty,
				Workload:     tpl.workload,
				DriveImpacts: copyImpacts(tpl.driveImpacts),
				Topic:        tpl.topic,
				Location:     loc,
				TimeOfDay:    ctx.Phase,
				Description:  tpl.description,
			},
		})
	}
	return out
}

func templatesForPhase(phase Phase) []incursionTemplate {
	out := make([]incursionTemplate, 0, len(incursionTemplates))
	for _, tpl := range incursionTemplates {
		for _, p := range tpl.phases {
			if p == phase {
				out = append(out, tpl)
				break
			}
		}
	}
	return out
}

func incursionSeed(worldID string, tick int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(worldID))
	h.Write([]byte{':'})
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(tick >> (8 * i))
	}
	h.Write(buf[:])
	return int64(h.Sum64())
}

func copyImpacts(in map[string]float64) map[string]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
