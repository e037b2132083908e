package narrative

import (
	"errors"
	"testing"

	"driftworld/internal/domain/psyche"
)

func TestDecode_AcceptsWellFormed(t *testing.T) {
	raw := []byte(`{
	  "agent_id": "a-1",
	  "stance_shift": "soften",
	  "relationship_target": "a-2",
	  "relationship_delta_class": "ease_tension",
	  "intention_ops": [
	    {"op": "create", "description": "clear the air", "horizon": "short", "priority": "high"}
	  ],
	  "memory_ops": [
	    {"kind": "episodic", "text": "they finally talked it out", "salience": "high"}
	  ],
	  "arc_ops": [
	    {"topic": "mending_things", "weight": "medium", "valence_pole": "positive"}
	  ]
	}`)

	d, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if d.AgentID != "a-1" || d.Stance != psyche.StanceSoften || d.RelationshipDelta != psyche.DeltaEaseTension {
		t.Fatalf("decoded fields wrong: %+v", d)
	}
	if len(d.IntentionOps) != 1 || len(d.MemoryOps) != 1 || len(d.ArcOps) != 1 {
		t.Fatalf("ops not decoded: %+v", d)
	}
}

func TestDecode_RejectsRawNumericFields(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"agent_id":"a-1","stance_shift":"soften","relationship_delta_class":"none","warmth":0.9}`),
		[]byte(`{"agent_id":"a-1","stance_shift":"soften","relationship_delta_class":"none","memory_ops":[{"kind":"episodic","text":"x","salience":0.8}]}`),
		[]byte(`{"agent_id":"a-1","stance_shift":0.4,"relationship_delta_class":"none"}`),
	}
	for i, raw := range cases {
		if _, err := Decode(raw); !errors.Is(err, psyche.ErrInvalidDecision) {
			t.Fatalf("case %d: numeric smuggling must be rejected, got %v", i, err)
		}
	}
}

func TestDecode_RejectsUnknownEnumAndGarbage(t *testing.T) {
	if _, err := Decode([]byte(`{"agent_id":"a-1","stance_shift":"gleeful","relationship_delta_class":"none"}`)); !errors.Is(err, psyche.ErrInvalidDecision) {
		t.Fatalf("unknown enum must be rejected, got %v", err)
	}
	if _, err := Decode([]byte(`not json at all`)); !errors.Is(err, psyche.ErrInvalidDecision) {
		t.Fatalf("garbage must be rejected, got %v", err)
	}
	if _, err := Decode([]byte(`{"stance_shift":"soften","relationship_delta_class":"none"}`)); !errors.Is(err, psyche.ErrInvalidDecision) {
		t.Fatalf("missing agent id must be rejected, got %v", err)
	}
}
