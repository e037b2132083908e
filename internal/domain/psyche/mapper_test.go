package psyche

import (
	"strings"
	"testing"
)

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789%")
}

func TestDescribeAgent_DeterministicAndDigitFree(t *testing.T) {
	a := simAgent()
	a.Mood = Mood{Valence: -0.35, Arousal: 0.6}
	a.Energy = 0.15
	a.Influence.PendingContact = 0.7
	a.Influence.TensionTopics = []string{"old_debt"}

	first := DescribeAgent(a)
	second := DescribeAgent(a)
	if strings.Join(first, "\n") != strings.Join(second, "\n") {
		t.Fatalf("mapper must be deterministic")
	}
	if len(first) == 0 {
		t.Fatalf("expected fragments")
	}
	for _, f := range first {
		if containsDigit(f) {
			t.Fatalf("fragment leaks numerals: %q", f)
		}
	}
}

func TestDescribeAgent_NoDigitsAcrossRange(t *testing.T) {
	for v := -1.0; v <= 1.0; v += 0.05 {
		a := simAgent()
		a.Mood = Mood{Valence: v, Arousal: (v + 1) / 2}
		a.Energy = (v + 1) / 2
		for _, f := range DescribeAgent(a) {
			if containsDigit(f) {
				t.Fatalf("fragment leaks numerals at v=%f: %q", v, f)
			}
		}
	}
}

func TestBand_BoundaryResolvesToLowerBand(t *testing.T) {
	got := band(0.2, levelBounds, levelLabels)
	if got != "very low" {
		t.Fatalf("value on the boundary must take the lower band, got %q", got)
	}
	if band(0.2000001, levelBounds, levelLabels) != "low" {
		t.Fatalf("value past the boundary must take the upper band")
	}
}

func TestDescribeRelationship_CoversTrustAndFamiliarity(t *testing.T) {
	r := Relationship{Source: "a-1", Target: "u-1", Warmth: 0.8, Trust: 0.9, Tension: 0.1, Familiarity: 0.1}
	fragments := DescribeRelationship(r, "Sam")

	joined := strings.Join(fragments, " | ")
	if !strings.Contains(joined, "warm") && !strings.Contains(joined, "devoted") {
		t.Fatalf("high warmth should read warm, got %q", joined)
	}
	if !strings.Contains(joined, "trust Sam deeply") {
		t.Fatalf("high trust should surface, got %q", joined)
	}
	if !strings.Contains(joined, "stranger") {
		t.Fatalf("low familiarity should surface, got %q", joined)
	}
	for _, f := range fragments {
		if containsDigit(f) {
			t.Fatalf("fragment leaks numerals: %q", f)
		}
	}
}

func TestDescribeArcs_OrderedByIntensity(t *testing.T) {
	arcs := []Arc{
		{ID: "arc-b", Topic: "the_move", Intensity: 0.3, ValenceBias: -0.5},
		{ID: "arc-a", Topic: "new_job", Intensity: 0.9, ValenceBias: 0.5},
		{ID: "arc-c", Topic: "noise", Intensity: 0.05},
	}
	fragments := DescribeArcs(arcs)
	if len(fragments) != 2 {
		t.Fatalf("faded arcs must not render, got %d fragments", len(fragments))
	}
	if !strings.Contains(fragments[0], "new job") {
		t.Fatalf("strongest arc first, got %q", fragments[0])
	}
}

func TestDescribeIntentions_SkipsResolved(t *testing.T) {
	intentions := []Intention{
		{ID: "i-1", Description: "call their sister", Priority: 0.9, Horizon: HorizonShort},
		{ID: "i-2", Description: "repaint the hall", Priority: 0.3, Horizon: HorizonLong, Resolved: true},
	}
	fragments := DescribeIntentions(intentions)
	if len(fragments) != 1 {
		t.Fatalf("resolved intentions must not render, got %d", len(fragments))
	}
	if !strings.Contains(fragments[0], "call their sister") || !strings.Contains(fragments[0], "soon") {
		t.Fatalf("unexpected fragment %q", fragments[0])
	}
}
