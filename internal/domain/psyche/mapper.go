package psyche

import (
	"fmt"
	"sort"
	"strings"
)

// SemanticContext is the only representation of internal state the
// narrative boundary ever receives. It carries bucketed prose fragments,
// never numbers.
type SemanticContext struct {
	AgentName    string   `json:"agent_name"`
	Fragments    []string `json:"fragments"`
	Scene        string   `json:"scene,omitempty"`
	EventSummary string   `json:"event_summary,omitempty"`
}

// band picks the label for v from fixed boundaries. A value exactly on a
// boundary resolves toward the lower band.
func band(v float64, bounds []float64, labels []string) string {
	for i, b := range bounds {
		if v <= b {
			return labels[i]
		}
	}
	return labels[len(labels)-1]
}

var (
	valenceBounds = []float64{-0.6, -0.2, 0.2, 0.6}
	valenceLabels = []string{"miserable", "low", "even-keeled", "content", "bright"}

	arousalBounds = []float64{0.25, 0.5, 0.75}
	arousalLabels = []string{"calm", "alert", "keyed up", "wired"}

	levelBounds = []float64{0.2, 0.4, 0.6, 0.8}
	levelLabels = []string{"very low", "low", "moderate", "high", "very high"}

	energyLabels = []string{"exhausted", "drained", "steady", "energetic", "brimming"}

	warmthBounds = []float64{-0.5, -0.1, 0.3, 0.7}
	warmthLabels = []string{"hostile", "cool", "neutral", "warm", "devoted"}

	tensionLabels = []string{"easy", "mildly strained", "tense", "charged", "explosive"}
)

// DescribeAgent renders an agent's numeric state as prose fragments. Pure
// and deterministic: identical input yields byte-identical output, and the
// output never contains digits or scale references.
func DescribeAgent(a Agent) []string {
	fragments := []string{
		fmt.Sprintf("%s feels %s and %s", a.Name,
			band(a.Mood.Valence, valenceBounds, valenceLabels),
			band(a.Mood.Arousal, arousalBounds, arousalLabels)),
		fmt.Sprintf("%s is %s", a.Name, band(a.Energy, levelBounds, energyLabels)),
	}

	names := make([]string, 0, len(a.Drives))
	for name := range a.Drives {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		d := a.Drives[DriveName(name)]
		if d.Level >= d.Baseline-0.1 && d.Level <= d.Baseline+0.1 {
			continue
		}
		fragments = append(fragments, fmt.Sprintf("their need for %s is %s",
			strings.ReplaceAll(name, "_", " "), band(d.Level, levelBounds, levelLabels)))
	}

	if a.Influence.PendingContact > 0.5 {
		fragments = append(fragments, fmt.Sprintf("%s has been meaning to reach out to someone", a.Name))
	}
	for _, topic := range a.Influence.TensionTopics {
		fragments = append(fragments, fmt.Sprintf("the matter of %s still sits unresolved with them",
			strings.ReplaceAll(topic, "_", " ")))
	}
	return fragments
}

// DescribeRelationship renders the directed edge from the owner's side.
func DescribeRelationship(r Relationship, targetName string) []string {
	fragments := []string{
		fmt.Sprintf("toward %s they feel %s", targetName, band(r.Warmth, warmthBounds, warmthLabels)),
		fmt.Sprintf("things between them are %s", band(r.Tension, levelBounds, tensionLabels)),
	}
	if r.Trust > 0.7 {
		fragments = append(fragments, fmt.Sprintf("they trust %s deeply", targetName))
	} else if r.Trust < 0.3 {
		fragments = append(fragments, fmt.Sprintf("they keep their guard up around %s", targetName))
	}
	if r.Familiarity < 0.2 {
		fragments = append(fragments, fmt.Sprintf("%s is still mostly a stranger to them", targetName))
	}
	return fragments
}

// DescribeArcs renders the active narrative threads, strongest first.
func DescribeArcs(arcs []Arc) []string {
	sorted := make([]Arc, len(arcs))
	copy(sorted, arcs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Intensity != sorted[j].Intensity {
			return sorted[i].Intensity > sorted[j].Intensity
		}
		return sorted[i].ID < sorted[j].ID
	})

	fragments := []string{}
	for _, arc := range sorted {
		if arc.Intensity < 0.15 {
			continue
		}
		tone := "weighs on"
		if arc.ValenceBias > 0 {
			tone = "brightens"
		}
		fragments = append(fragments, fmt.Sprintf("the thread of %s %s their days, %s",
			strings.ReplaceAll(arc.Topic, "_", " "), tone,
			band(arc.Intensity, levelBounds, levelLabels)))
	}
	return fragments
}

// DescribeIntentions renders unresolved intentions in priority order.
func DescribeIntentions(intentions []Intention) []string {
	sorted := make([]Intention, 0, len(intentions))
	for _, it := range intentions {
		if !it.Resolved {
			sorted = append(sorted, it)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	fragments := []string{}
	for _, it := range sorted {
		urgency := "someday"
		switch it.Horizon {
		case HorizonShort:
			urgency = "soon"
		case HorizonMedium:
			urgency = "before long"
		}
		fragments = append(fragments, fmt.Sprintf("they mean to %s, %s", it.Description, urgency))
	}
	return fragments
}
