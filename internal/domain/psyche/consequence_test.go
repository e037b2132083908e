package psyche

import (
	"errors"
	"testing"
)

func validDecision() Decision {
	return Decision{
		ID:                 "d-1",
		AgentID:            "a-1",
		Stance:             StanceSoften,
		RelationshipTarget: "u-1",
		RelationshipDelta:  DeltaEaseTension,
		IntentionOps: []IntentionOp{
			{Op: IntentionCreate, Description: "apologize properly", Horizon: HorizonShort, Priority: PriorityHigh},
		},
		MemoryOps: []MemoryOp{
			{Kind: MemoryEpisodic, Text: "the argument finally cooled off", Salience: SalienceHigh},
		},
		ArcOps: []ArcOp{
			{Topic: "mending_things", Weight: SalienceMedium, ValencePole: "positive"},
		},
	}
}

func notProtected(string) bool { return false }

func TestValidateDecision_AcceptsWellFormed(t *testing.T) {
	if err := ValidateDecision(validDecision(), notProtected); err != nil {
		t.Fatalf("valid decision rejected: %v", err)
	}
}

func TestValidateDecision_RejectsProtectedSubject(t *testing.T) {
	d := validDecision()
	d.AgentID = "u-1"
	err := ValidateDecision(d, func(id string) bool { return id == "u-1" })
	if !errors.Is(err, ErrProtectedParticipant) {
		t.Fatalf("protected subject must be a guard trip, got %v", err)
	}
}

func TestValidateDecision_RejectsUnknownClasses(t *testing.T) {
	cases := []func(*Decision){
		func(d *Decision) { d.Stance = "ecstatic" },
		func(d *Decision) { d.RelationshipDelta = "warmth=0.9" },
		func(d *Decision) { d.IntentionOps[0].Priority = "0.75" },
		func(d *Decision) { d.IntentionOps[0].Horizon = "eventually" },
		func(d *Decision) { d.MemoryOps[0].Salience = "0.9" },
		func(d *Decision) { d.MemoryOps[0].Kind = "numeric" },
		func(d *Decision) { d.ArcOps[0].Weight = "11" },
		func(d *Decision) { d.ArcOps[0].ValencePole = "0.4" },
	}
	for i, mutate := range cases {
		d := validDecision()
		mutate(&d)
		if err := ValidateDecision(d, notProtected); !errors.Is(err, ErrInvalidDecision) {
			t.Fatalf("case %d: raw or unknown value must be rejected, got %v", i, err)
		}
	}
}

func TestValidateDecision_RejectsIncompleteOps(t *testing.T) {
	d := validDecision()
	d.RelationshipTarget = ""
	if err := ValidateDecision(d, notProtected); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("delta without target must be rejected")
	}

	d = validDecision()
	d.IntentionOps = []IntentionOp{{Op: IntentionResolve}}
	if err := ValidateDecision(d, notProtected); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("resolve without id must be rejected")
	}

	d = validDecision()
	d.MemoryOps = []MemoryOp{{Kind: MemoryEpisodic, Salience: SalienceLow}}
	if err := ValidateDecision(d, notProtected); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("empty memory text must be rejected")
	}
}

func TestApplyStance_BoundedNudge(t *testing.T) {
	svc := AutonomyService{}
	a := simAgent()

	if err := svc.ApplyStance(&a, StanceSoften); err != nil {
		t.Fatalf("stance error: %v", err)
	}
	if a.Mood.Valence <= 0 {
		t.Fatalf("soften must raise valence")
	}
	if a.Influence.MoodOffset <= 0 {
		t.Fatalf("soften must bias the influence field")
	}

	user := Agent{ID: "u-1", Protected: true}
	if err := svc.ApplyStance(&user, StanceSoften); !errors.Is(err, ErrProtectedParticipant) {
		t.Fatalf("stance on the protected user must trip, got %v", err)
	}
}

func TestApplyRelationshipDelta_LawTableBoundedStep(t *testing.T) {
	svc := AutonomyService{}
	r := Relationship{Source: "a-1", Target: "a-2", Tension: 0.8, Trust: 0.5}

	svc.ApplyRelationshipDelta(&r, DeltaEaseTension)
	if r.Tension >= 0.8 {
		t.Fatalf("ease_tension must move tension down")
	}
	if 0.8-r.Tension > 0.25 {
		t.Fatalf("law-table step must be bounded, moved %f", 0.8-r.Tension)
	}

	for i := 0; i < 50; i++ {
		svc.ApplyRelationshipDelta(&r, DeltaBreachTrust)
	}
	if r.Trust < 0 || r.Tension > 1 {
		t.Fatalf("axes escaped bounds: %+v", r)
	}
}

func TestOpsMaterialize(t *testing.T) {
	m := MemoryFromOp("m-1", "a-1", 42, MemoryOp{Kind: MemoryEpisodic, Text: "a long talk", Salience: SalienceMedium})
	if m.Salience != salienceBands[SalienceMedium] || m.Owner != "a-1" || m.Tick != 42 {
		t.Fatalf("memory not materialized from op: %+v", m)
	}

	it := IntentionFromOp("i-1", "a-1", IntentionOp{Op: IntentionCreate, Description: "write back", Horizon: HorizonMedium, Priority: PriorityLow})
	if it.Priority != priorityBands[PriorityLow] || it.Resolved {
		t.Fatalf("intention not materialized from op: %+v", it)
	}

	arc := ArcFromOp("arc-1", "a-1", ArcOp{Topic: "quiet_feud", Weight: SalienceHigh, ValencePole: "negative"})
	if arc.ValenceBias >= 0 || arc.Intensity != salienceBands[SalienceHigh] {
		t.Fatalf("arc not materialized from op: %+v", arc)
	}

	before := arc.Intensity
	ReinforceArc(&arc, ArcOp{Topic: "quiet_feud", Weight: SalienceLow, ValencePole: "negative"})
	if arc.Intensity <= before {
		t.Fatalf("reinforcement must raise intensity")
	}
}
