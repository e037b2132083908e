// Package model holds the persistence rows behind the gorm repositories.
// Structured domain fields (graphs, drives, payloads) ride in jsonb columns;
// everything the queries filter or version on is a plain column.
package model

import "time"

type World struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Tick            int64     `gorm:"column:tick"`
	BaseTime        time.Time `gorm:"column:base_time"`
	TickStepSeconds int64     `gorm:"column:tick_step_seconds"`
	Graph           []byte    `gorm:"column:graph;type:jsonb"`
	Version         int64     `gorm:"column:version"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

type Agent struct {
	ID          string    `gorm:"column:id;primaryKey"`
	WorldID     string    `gorm:"column:world_id;index"`
	Name        string    `gorm:"column:name"`
	Location    string    `gorm:"column:location"`
	Protected   bool      `gorm:"column:protected"`
	Energy      float64   `gorm:"column:energy"`
	Valence     float64   `gorm:"column:valence"`
	Arousal     float64   `gorm:"column:arousal"`
	Drives      []byte    `gorm:"column:drives;type:jsonb"`
	Personality []byte    `gorm:"column:personality;type:jsonb"`
	Routine     []byte    `gorm:"column:routine;type:jsonb"`
	Influence   []byte    `gorm:"column:influence;type:jsonb"`
	Version     int64     `gorm:"column:version"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

type Relationship struct {
	Source      string  `gorm:"column:source;primaryKey"`
	Target      string  `gorm:"column:target;primaryKey"`
	Warmth      float64 `gorm:"column:warmth"`
	Trust       float64 `gorm:"column:trust"`
	Tension     float64 `gorm:"column:tension"`
	Attraction  float64 `gorm:"column:attraction"`
	Familiarity float64 `gorm:"column:familiarity"`
	Comfort     float64 `gorm:"column:comfort"`
	Volatility  float64 `gorm:"column:volatility"`
	Version     int64   `gorm:"column:version"`
}

type Memory struct {
	ID       string  `gorm:"column:id;primaryKey"`
	Owner    string  `gorm:"column:owner;index"`
	Kind     string  `gorm:"column:kind"`
	Text     string  `gorm:"column:text"`
	Tick     int64   `gorm:"column:tick"`
	Salience float64 `gorm:"column:salience"`
}

type Arc struct {
	ID          string  `gorm:"column:id;primaryKey"`
	Owner       string  `gorm:"column:owner;index"`
	Topic       string  `gorm:"column:topic"`
	Intensity   float64 `gorm:"column:intensity"`
	ValenceBias float64 `gorm:"column:valence_bias"`
	DecayRate   float64 `gorm:"column:decay_rate"`
	Version     int64   `gorm:"column:version"`
}

type Intention struct {
	ID          string  `gorm:"column:id;primaryKey"`
	Owner       string  `gorm:"column:owner;index"`
	Description string  `gorm:"column:description"`
	Priority    float64 `gorm:"column:priority"`
	Horizon     string  `gorm:"column:horizon"`
	Stability   float64 `gorm:"column:stability"`
	Resolved    bool    `gorm:"column:resolved"`
	Version     int64   `gorm:"column:version"`
}

type CalendarItem struct {
	ID            string `gorm:"column:id;primaryKey"`
	WorldID       string `gorm:"column:world_id;index"`
	Owner         string `gorm:"column:owner"`
	Title         string `gorm:"column:title"`
	StartTick     int64  `gorm:"column:start_tick"`
	EndTick       int64  `gorm:"column:end_tick"`
	Kind          string `gorm:"column:kind"`
	Status        string `gorm:"column:status"`
	EveryTicks    int64  `gorm:"column:every_ticks"`
	RemindersSent int    `gorm:"column:reminders_sent"`
	Version       int64  `gorm:"column:version"`
}

type Event struct {
	ID        string `gorm:"column:id;primaryKey"`
	WorldID   string `gorm:"column:world_id;index:idx_events_world_tick"`
	Tick      int64  `gorm:"column:tick;index:idx_events_world_tick"`
	Kind      string `gorm:"column:kind"`
	Source    string `gorm:"column:source"`
	Target    string `gorm:"column:target"`
	Payload   []byte `gorm:"column:payload;type:jsonb"`
	Processed bool   `gorm:"column:processed"`
}

type Cooldown struct {
	AgentID   string `gorm:"column:agent_id;primaryKey"`
	UntilTick int64  `gorm:"column:until_tick"`
}

type CycleExecution struct {
	WorldID        string    `gorm:"column:world_id;primaryKey"`
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	Narration      string    `gorm:"column:narration"`
	Degraded       bool      `gorm:"column:degraded"`
	AppliedAt      time.Time `gorm:"column:applied_at"`
}
