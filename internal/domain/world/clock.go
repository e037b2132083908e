package world

import "time"

type Phase string

const (
	PhaseMorning   Phase = "morning"
	PhaseAfternoon Phase = "afternoon"
	PhaseEvening   Phase = "evening"
	PhaseNight     Phase = "night"
)

type ClockConfig struct {
	BaseTime time.Time
	TickStep time.Duration
}

// Clock derives wall-clock time from the tick counter. The tick counter is
// the only mutable time source; the timestamp is always base + tick*step.
type Clock struct {
	cfg ClockConfig
}

func NewClock(cfg ClockConfig) Clock {
	if cfg.TickStep <= 0 {
		cfg.TickStep = time.Hour
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Unix(0, 0).UTC()
	}
	cfg.BaseTime = cfg.BaseTime.UTC()
	return Clock{cfg: cfg}
}

func DefaultClock() Clock {
	return NewClock(ClockConfig{})
}

func (c Clock) TimeAt(tick int64) time.Time {
	if tick < 0 {
		tick = 0
	}
	return c.cfg.BaseTime.Add(time.Duration(tick) * c.cfg.TickStep)
}

func (c Clock) HourAt(tick int64) int {
	return c.TimeAt(tick).Hour()
}

func (c Clock) PhaseAt(tick int64) Phase {
	switch h := c.HourAt(tick); {
	case h >= 6 && h < 12:
		return PhaseMorning
	case h >= 12 && h < 18:
		return PhaseAfternoon
	case h >= 18 && h < 23:
		return PhaseEvening
	default:
		return PhaseNight
	}
}

// TicksBetween reports how many whole ticks fit between the clock time at
// fromTick and the given wall-clock instant. Used for offline catch-up.
func (c Clock) TicksBetween(fromTick int64, now time.Time) int64 {
	elapsed := now.UTC().Sub(c.TimeAt(fromTick))
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / c.cfg.TickStep)
}

func (c Clock) Step() time.Duration {
	return c.cfg.TickStep
}
