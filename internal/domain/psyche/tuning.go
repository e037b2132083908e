package psyche

const (
	// Passive drift per tick.
	DriveBaselineStep   = 0.02
	ArousalDecayFactor  = 0.85
	ArousalBaseline     = 0.2
	ValenceSettleFactor = 0.3
	MoodOffsetDecay     = 0.98
	PendingContactDecay = 0.95
	ArcDecayFloor       = 0.01

	// Relationship drift per tick, absent events.
	WarmthMidpoint       = 0.0
	TrustMidpoint        = 0.5
	WarmthDriftStep      = 0.01
	TrustDriftStep       = 0.01
	TensionDriftStep     = 0.015
	FamiliarityDriftStep = 0.002

	// Event-driven relationship steps, scaled by event magnitude.
	WarmthEventGain  = 0.25
	TrustEventGain   = 0.2
	TensionEventGain = 0.3
	FamiliarityGain  = 0.05
	ComfortEventGain = 0.1

	// Energy law.
	EnergyHighArousal         = 0.7
	EnergyArousalDrain        = 0.03
	EnergyWorkloadDrain       = 0.06
	EnergyRestRecovery        = 0.08
	EnergyFloor               = 0.25
	EnergyFloorThresholdRaise = 0.2

	// Mood law.
	ArousalNoveltyGain  = 0.4
	ArousalConflictGain = 0.5

	// InfluenceField updates apply only above this effect magnitude.
	InfluenceMagnitudeThreshold = 0.5
	InfluenceMoodGain           = 0.1
	InfluencePressureGain       = 0.15
	InfluenceContactGain        = 0.2

	// Eligibility gate.
	EligibilityThreshold   = 0.55
	MeaningWeightMagnitude = 0.45
	MeaningWeightAlignment = 0.3
	MeaningWeightTension   = 0.25

	// Cognition cooldown in ticks.
	CooldownTicks = 6
)

// Symbolic delta tables. The consequence integrator maps decision classes
// through these; narrative output can never set raw numbers.
var stanceShiftValence = map[StanceShift]float64{
	StanceSoften:   0.3,
	StanceHarden:   -0.3,
	StanceApproach: 0.2,
	StanceWithdraw: -0.2,
	StanceNone:     0,
}

type relationshipDelta struct {
	Warmth  float64
	Trust   float64
	Tension float64
	Comfort float64
}

var relationshipDeltaTable = map[RelationshipDeltaClass]relationshipDelta{
	DeltaWarm:         {Warmth: 0.15, Comfort: 0.05},
	DeltaCool:         {Warmth: -0.15},
	DeltaDeepenTrust:  {Trust: 0.12, Comfort: 0.05},
	DeltaBreachTrust:  {Trust: -0.2, Tension: 0.1},
	DeltaEaseTension:  {Tension: -0.18, Comfort: 0.08},
	DeltaRaiseTension: {Tension: 0.18, Warmth: -0.05},
	DeltaNone:         {},
}

var salienceBands = map[SalienceClass]float64{
	SalienceLow:    0.25,
	SalienceMedium: 0.55,
	SalienceHigh:   0.85,
}

var priorityBands = map[PriorityClass]float64{
	PriorityLow:    0.3,
	PriorityMedium: 0.6,
	PriorityHigh:   0.9,
}
