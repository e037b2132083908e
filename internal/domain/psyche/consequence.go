package psyche

import (
	"errors"
	"fmt"
)

// The cognition boundary speaks in closed symbolic classes. Anything outside
// these sets, or any attempt to carry raw numeric values, is rejected
// before it can touch the numeric substrate.

type StanceShift string

const (
	StanceNone     StanceShift = "none"
	StanceSoften   StanceShift = "soften"
	StanceHarden   StanceShift = "harden"
	StanceApproach StanceShift = "approach"
	StanceWithdraw StanceShift = "withdraw"
)

type RelationshipDeltaClass string

const (
	DeltaNone         RelationshipDeltaClass = "none"
	DeltaWarm         RelationshipDeltaClass = "warm"
	DeltaCool         RelationshipDeltaClass = "cool"
	DeltaDeepenTrust  RelationshipDeltaClass = "deepen_trust"
	DeltaBreachTrust  RelationshipDeltaClass = "breach_trust"
	DeltaEaseTension  RelationshipDeltaClass = "ease_tension"
	DeltaRaiseTension RelationshipDeltaClass = "raise_tension"
)

type SalienceClass string

const (
	SalienceLow    SalienceClass = "low"
	SalienceMedium SalienceClass = "medium"
	SalienceHigh   SalienceClass = "high"
)

type PriorityClass string

const (
	PriorityLow    PriorityClass = "low"
	PriorityMedium PriorityClass = "medium"
	PriorityHigh   PriorityClass = "high"
)

type IntentionOpKind string

const (
	IntentionCreate  IntentionOpKind = "create"
	IntentionResolve IntentionOpKind = "resolve"
)

type IntentionOp struct {
	Op          IntentionOpKind `json:"op"`
	IntentionID string          `json:"intention_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Horizon     Horizon         `json:"horizon,omitempty"`
	Priority    PriorityClass   `json:"priority,omitempty"`
}

type MemoryOp struct {
	Kind     MemoryKind    `json:"kind"`
	Text     string        `json:"text"`
	Salience SalienceClass `json:"salience"`
}

type ArcOp struct {
	Topic       string        `json:"topic"`
	Weight      SalienceClass `json:"weight"`
	ValencePole string        `json:"valence_pole"` // "positive" | "negative"
}

// Decision is the structured outcome of one cognition call, scoped to one
// non-protected agent. All fields are symbolic; the integrator maps them to
// numeric deltas through the law tables.
type Decision struct {
	ID                 string                 `json:"id"`
	AgentID            string                 `json:"agent_id"`
	Stance             StanceShift            `json:"stance_shift"`
	RelationshipTarget string                 `json:"relationship_target,omitempty"`
	RelationshipDelta  RelationshipDeltaClass `json:"relationship_delta_class"`
	IntentionOps       []IntentionOp          `json:"intention_ops,omitempty"`
	MemoryOps          []MemoryOp             `json:"memory_ops,omitempty"`
	ArcOps             []ArcOp                `json:"arc_ops,omitempty"`
}

var ErrInvalidDecision = errors.New("invalid cognition decision")

// ValidateDecision is the integrator's last line of defense. isProtected
// answers whether an id belongs to the protected participant; the decision
// subject must never be protected. The relationship target may be the
// protected participant (that edge is the agent's own state) but
// intention and memory owners are always the decision subject.
func ValidateDecision(d Decision, isProtected func(id string) bool) error {
	if d.AgentID == "" {
		return fmt.Errorf("%w: missing agent id", ErrInvalidDecision)
	}
	if isProtected != nil && isProtected(d.AgentID) {
		return &GuardTrip{AgentID: d.AgentID, Op: "consequence.ValidateDecision"}
	}
	if _, ok := stanceShiftValence[d.Stance]; !ok {
		return fmt.Errorf("%w: unknown stance shift %q", ErrInvalidDecision, d.Stance)
	}
	if _, ok := relationshipDeltaTable[d.RelationshipDelta]; !ok {
		return fmt.Errorf("%w: unknown relationship delta class %q", ErrInvalidDecision, d.RelationshipDelta)
	}
	if d.RelationshipDelta != DeltaNone && d.RelationshipTarget == "" {
		return fmt.Errorf("%w: relationship delta without target", ErrInvalidDecision)
	}
	if d.RelationshipTarget == d.AgentID && d.RelationshipDelta != DeltaNone {
		return fmt.Errorf("%w: relationship delta targeting self", ErrInvalidDecision)
	}
	for _, op := range d.IntentionOps {
		switch op.Op {
		case IntentionCreate:
			if op.Description == "" {
				return fmt.Errorf("%w: intention create without description", ErrInvalidDecision)
			}
			if _, ok := priorityBands[op.Priority]; !ok {
				return fmt.Errorf("%w: unknown priority class %q", ErrInvalidDecision, op.Priority)
			}
			switch op.Horizon {
			case HorizonShort, HorizonMedium, HorizonLong:
			default:
				return fmt.Errorf("%w: unknown horizon %q", ErrInvalidDecision, op.Horizon)
			}
		case IntentionResolve:
			if op.IntentionID == "" {
				return fmt.Errorf("%w: intention resolve without id", ErrInvalidDecision)
			}
		default:
			return fmt.Errorf("%w: unknown intention op %q", ErrInvalidDecision, op.Op)
		}
	}
	for _, op := range d.MemoryOps {
		if op.Kind != MemoryEpisodic && op.Kind != MemoryBiographical {
			return fmt.Errorf("%w: unknown memory kind %q", ErrInvalidDecision, op.Kind)
		}
		if op.Text == "" {
			return fmt.Errorf("%w: empty memory text", ErrInvalidDecision)
		}
		if _, ok := salienceBands[op.Salience]; !ok {
			return fmt.Errorf("%w: unknown salience class %q", ErrInvalidDecision, op.Salience)
		}
	}
	for _, op := range d.ArcOps {
		if op.Topic == "" {
			return fmt.Errorf("%w: arc op without topic", ErrInvalidDecision)
		}
		if _, ok := salienceBands[op.Weight]; !ok {
			return fmt.Errorf("%w: unknown arc weight %q", ErrInvalidDecision, op.Weight)
		}
		if op.ValencePole != "positive" && op.ValencePole != "negative" {
			return fmt.Errorf("%w: unknown valence pole %q", ErrInvalidDecision, op.ValencePole)
		}
	}
	return nil
}

// ApplyStance folds a stance shift into the agent through the law table:
// a bounded valence nudge plus a persistent influence-field bias.
func (AutonomyService) ApplyStance(a *Agent, s StanceShift) error {
	if err := EnsureSimulated(*a, "consequence.ApplyStance"); err != nil {
		return err
	}
	v := stanceShiftValence[s]
	a.Mood.Valence = clamp11(a.Mood.Valence + v*ValenceSettleFactor)
	a.Influence.MoodOffset = clamp11(a.Influence.MoodOffset + v*InfluenceMoodGain)
	return nil
}

// ApplyRelationshipDelta moves the edge by the class's law-table step.
func (AutonomyService) ApplyRelationshipDelta(r *Relationship, class RelationshipDeltaClass) {
	d := relationshipDeltaTable[class]
	r.Warmth += d.Warmth
	r.Trust += d.Trust
	r.Tension += d.Tension
	r.Comfort += d.Comfort
	r.Clamp()
}

// MemoryFromOp materializes a memory row from a symbolic op.
func MemoryFromOp(id, owner string, tick int64, op MemoryOp) Memory {
	return Memory{
		ID:       id,
		Owner:    owner,
		Kind:     op.Kind,
		Text:     op.Text,
		Tick:     tick,
		Salience: salienceBands[op.Salience],
	}
}

// IntentionFromOp materializes a new intention from a create op.
func IntentionFromOp(id, owner string, op IntentionOp) Intention {
	return Intention{
		ID:          id,
		Owner:       owner,
		Description: op.Description,
		Priority:    priorityBands[op.Priority],
		Horizon:     op.Horizon,
		Stability:   0.5,
	}
}

// ArcFromOp materializes or reinforces a narrative thread.
func ArcFromOp(id, owner string, op ArcOp) Arc {
	bias := salienceBands[op.Weight]
	if op.ValencePole == "negative" {
		bias = -bias
	}
	return Arc{
		ID:          id,
		Owner:       owner,
		Topic:       op.Topic,
		Intensity:   salienceBands[op.Weight],
		ValenceBias: bias,
		DecayRate:   0.05,
	}
}

// ReinforceArc folds a repeated arc op into an existing thread instead of
// duplicating it.
func ReinforceArc(arc *Arc, op ArcOp) {
	arc.Intensity = clamp01(arc.Intensity + 0.5*salienceBands[op.Weight])
	bias := salienceBands[op.Weight]
	if op.ValencePole == "negative" {
		bias = -bias
	}
	arc.ValenceBias = clamp11(arc.ValenceBias + 0.3*bias)
}
