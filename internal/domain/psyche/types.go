package psyche

import (
	"time"

	"driftworld/internal/domain/world"
)

type DriveName string

const (
	DriveConnection  DriveName = "connection"
	DriveAchievement DriveName = "achievement"
	DriveRest        DriveName = "rest"
	DriveSafety      DriveName = "safety"
	DriveNovelty     DriveName = "novelty"
)

// Drive is one need axis. Level and Sensitivity stay in [0,1]; absent events
// the level drifts toward Baseline by a fixed step per tick.
type Drive struct {
	Level       float64 `json:"level"`
	Sensitivity float64 `json:"sensitivity"`
	Baseline    float64 `json:"baseline"`
}

type Mood struct {
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// InfluenceField carries slow cross-tick biases that outlive the events that
// caused them. Only the autonomy laws and the consequence integrator write it.
type InfluenceField struct {
	MoodOffset     float64               `json:"mood_offset"`
	DrivePressure  map[DriveName]float64 `json:"drive_pressure,omitempty"`
	PendingContact float64               `json:"pending_contact"`
	TensionTopics  []string              `json:"tension_topics,omitempty"`
}

// Agent is one inhabitant of a world. When Protected is true the agent is
// the real participant: drives, mood, energy, arcs, intentions and outgoing
// relationships stay empty and no component may write them. The flag is set
// at creation and never toggled by simulation logic.
type Agent struct {
	ID          string              `json:"id"`
	WorldID     string              `json:"world_id"`
	Name        string              `json:"name"`
	Location    string              `json:"location"`
	Protected   bool                `json:"protected"`
	Energy      float64             `json:"energy"`
	Mood        Mood                `json:"mood"`
	Drives      map[DriveName]Drive `json:"drives,omitempty"`
	Personality map[string]float64  `json:"personality,omitempty"`
	Routine     world.RoutineTable  `json:"routine,omitempty"`
	Influence   InfluenceField      `json:"influence"`
	Version     int64               `json:"version"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Relationship is a directed edge. The protected participant may appear as
// Target (an agent's feelings about them) but never as Source.
type Relationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Warmth      float64 `json:"warmth"`
	Trust       float64 `json:"trust"`
	Tension     float64 `json:"tension"`
	Attraction  float64 `json:"attraction"`
	Familiarity float64 `json:"familiarity"`
	Comfort     float64 `json:"comfort"`
	Volatility  float64 `json:"volatility"`
	Version     int64   `json:"version"`
}

type MemoryKind string

const (
	MemoryEpisodic     MemoryKind = "episodic"
	MemoryBiographical MemoryKind = "biographical"
)

// Memory rows are append-only and never carry another entity's internal
// numeric state.
type Memory struct {
	ID       string     `json:"id"`
	Owner    string     `json:"owner"`
	Kind     MemoryKind `json:"kind"`
	Text     string     `json:"text"`
	Tick     int64      `json:"tick"`
	Salience float64    `json:"salience"`
}

// Arc is an ongoing narrative thread that decays each tick absent
// reinforcement.
type Arc struct {
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Topic       string  `json:"topic"`
	Intensity   float64 `json:"intensity"`
	ValenceBias float64 `json:"valence_bias"`
	DecayRate   float64 `json:"decay_rate"`
	Version     int64   `json:"version"`
}

type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Intention rows are created and resolved only by the consequence
// integrator.
type Intention struct {
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Description string  `json:"description"`
	Priority    float64 `json:"priority"`
	Horizon     Horizon `json:"horizon"`
	Stability   float64 `json:"stability"`
	Resolved    bool    `json:"resolved"`
	Version     int64   `json:"version"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp11(v float64) float64 { return clamp(v, -1, 1) }

// Clamp forces every axis back into its declared range. Every write path
// calls it before persisting.
func (r *Relationship) Clamp() {
	r.Warmth = clamp11(r.Warmth)
	r.Trust = clamp01(r.Trust)
	r.Tension = clamp01(r.Tension)
	r.Attraction = clamp01(r.Attraction)
	r.Familiarity = clamp01(r.Familiarity)
	r.Comfort = clamp01(r.Comfort)
	r.Volatility = clamp01(r.Volatility)
}
