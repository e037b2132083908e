package psyche

import (
	"sort"

	"driftworld/internal/domain/world"
)

// AutonomyService holds the numeric update laws. It is the only writer of
// drives, mood, relationship axes, energy and the influence field.
type AutonomyService struct{}

func stepToward(v, target, step float64) float64 {
	switch {
	case v < target:
		if v+step > target {
			return target
		}
		return v + step
	case v > target:
		if v-step < target {
			return target
		}
		return v - step
	}
	return v
}

// TickDrift applies the passive per-tick laws: drives drift toward baseline,
// arousal decays geometrically, valence settles toward the influence-field
// offset, energy recovers when resting and drains under sustained high
// arousal. The influence field itself relaxes slowly.
func (AutonomyService) TickDrift(a *Agent, resting bool) error {
	if err := EnsureSimulated(*a, "autonomy.TickDrift"); err != nil {
		return err
	}

	for name, d := range a.Drives {
		d.Level = clamp01(stepToward(d.Level, d.Baseline, DriveBaselineStep))
		a.Drives[name] = d
	}

	a.Mood.Arousal = clamp01(ArousalBaseline + (a.Mood.Arousal-ArousalBaseline)*ArousalDecayFactor)
	a.Mood.Valence = clamp11(a.Mood.Valence + ValenceSettleFactor*(a.Influence.MoodOffset-a.Mood.Valence)*0.1)

	if resting {
		a.Energy = clamp01(a.Energy + EnergyRestRecovery)
	} else if a.Mood.Arousal > EnergyHighArousal {
		a.Energy = clamp01(a.Energy - EnergyArousalDrain)
	}

	a.Influence.MoodOffset *= MoodOffsetDecay
	a.Influence.PendingContact *= PendingContactDecay
	return nil
}

// ApplyEvent folds one event into the agent's numeric state. Drive levels
// move by effect*sensitivity, valence moves toward the weighted blend of the
// event valence and the drive deltas it caused, arousal rises with novelty
// and conflict, workload events drain energy. Effects past the magnitude
// threshold also bias the influence field so they persist after the event is
// forgotten.
func (AutonomyService) ApplyEvent(a *Agent, ev world.Event) error {
	if err := EnsureSimulated(*a, "autonomy.ApplyEvent"); err != nil {
		return err
	}

	deltaSum := 0.0
	names := make([]string, 0, len(ev.Payload.DriveImpacts))
	for name := range ev.Payload.DriveImpacts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d, ok := a.Drives[DriveName(name)]
		if !ok {
			continue
		}
		effect := clamp11(ev.Payload.DriveImpacts[name])
		next := clamp01(d.Level + effect*d.Sensitivity)
		deltaSum += next - d.Level
		d.Level = next
		a.Drives[DriveName(name)] = d
	}

	mag := clamp01(ev.Payload.Magnitude)
	signal := clamp11(ev.Payload.Valence + deltaSum)
	a.Mood.Valence = clamp11(a.Mood.Valence + ValenceSettleFactor*mag*(signal-a.Mood.Valence))
	a.Mood.Arousal = clamp01(a.Mood.Arousal + ArousalNoveltyGain*ev.Payload.Novelty*mag + ArousalConflictGain*ev.Payload.Conflict*mag)

	if ev.Payload.Workload {
		a.Energy = clamp01(a.Energy - EnergyWorkloadDrain*mag)
	}

	if mag >= InfluenceMagnitudeThreshold {
		a.Influence.MoodOffset = clamp11(a.Influence.MoodOffset + InfluenceMoodGain*ev.Payload.Valence)
		for _, name := range names {
			if a.Influence.DrivePressure == nil {
				a.Influence.DrivePressure = map[DriveName]float64{}
			}
			p := a.Influence.DrivePressure[DriveName(name)]
			a.Influence.DrivePressure[DriveName(name)] = clamp11(p + InfluencePressureGain*ev.Payload.DriveImpacts[name])
		}
		if ev.Kind == world.EventInteraction || ev.Kind == world.EventUserAction {
			a.Influence.PendingContact = clamp01(a.Influence.PendingContact + InfluenceContactGain*mag)
		}
		if ev.Payload.Conflict > 0.4 && ev.Payload.Topic != "" {
			a.Influence.TensionTopics = appendTopic(a.Influence.TensionTopics, ev.Payload.Topic)
		}
	}
	return nil
}

// DriftRelationship applies the no-event decay laws: warmth and trust move
// toward their neutral midpoints, tension toward zero, familiarity fades
// with a smaller step than the rest.
func (AutonomyService) DriftRelationship(r *Relationship) {
	r.Warmth = stepToward(r.Warmth, WarmthMidpoint, WarmthDriftStep)
	r.Trust = stepToward(r.Trust, TrustMidpoint, TrustDriftStep)
	r.Tension = stepToward(r.Tension, 0, TensionDriftStep)
	r.Familiarity = stepToward(r.Familiarity, 0, FamiliarityDriftStep)
	r.Clamp()
}

// ApplyRelationshipEvent moves the directed edge in response to an event
// between its endpoints: positive valence raises warmth and trust and eases
// tension, negative valence does the reverse. Familiarity always grows with
// contact; conflict feeds volatility.
func (AutonomyService) ApplyRelationshipEvent(r *Relationship, ev world.Event) {
	mag := clamp01(ev.Payload.Magnitude)
	val := clamp11(ev.Payload.Valence)

	r.Warmth += WarmthEventGain * mag * val
	r.Trust += TrustEventGain * mag * val
	r.Tension -= TensionEventGain * mag * val
	r.Comfort += ComfortEventGain * mag * val
	r.Familiarity += FamiliarityGain * mag
	r.Volatility += 0.05 * ev.Payload.Conflict * mag
	r.Clamp()
}

// DecayArc fades a narrative thread by its own decay rate, never below the
// floor and never deleting it.
func (AutonomyService) DecayArc(arc *Arc) {
	rate := arc.DecayRate
	if rate <= 0 {
		rate = ArcDecayFloor
	}
	arc.Intensity = clamp01(arc.Intensity * (1 - rate))
}

func appendTopic(topics []string, topic string) []string {
	for _, t := range topics {
		if t == topic {
			return topics
		}
	}
	return append(topics, topic)
}
