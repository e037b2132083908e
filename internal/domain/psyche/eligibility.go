package psyche

import (
	"math"

	"driftworld/internal/domain/world"
)

// Meaningfulness scores an event from an agent's vantage in [0,1],
// combining event magnitude, alignment with the agent's drive pressure and
// the tension of the relationship the event runs along (nil when the event
// has no counterpart).
func Meaningfulness(ev world.Event, a Agent, rel *Relationship) (float64, error) {
	if err := EnsureSimulated(a, "eligibility.Meaningfulness"); err != nil {
		return 0, err
	}

	mag := clamp01(ev.Payload.Magnitude)

	alignment := 0.0
	for name, impact := range ev.Payload.DriveImpacts {
		d, ok := a.Drives[DriveName(name)]
		if !ok {
			continue
		}
		pressure := math.Abs(d.Level-d.Baseline) + math.Abs(a.Influence.DrivePressure[DriveName(name)])
		alignment += math.Abs(impact) * clamp01(pressure)
	}
	alignment = clamp01(alignment)

	tension := 0.0
	if rel != nil {
		tension = clamp01(rel.Tension)
	}

	score := MeaningWeightMagnitude*mag + MeaningWeightAlignment*alignment + MeaningWeightTension*tension
	return clamp01(score), nil
}

// EffectiveThreshold raises the base eligibility threshold for depleted
// agents so low-energy agents are harder to select for cognition.
func EffectiveThreshold(a Agent, base float64) float64 {
	if a.Energy < EnergyFloor {
		return clamp01(base + EnergyFloorThresholdRaise)
	}
	return base
}
