package world

import (
	"testing"
	"time"
)

func TestClock_TimeAtDerivesFromTick(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	c := NewClock(ClockConfig{BaseTime: base, TickStep: 30 * time.Minute})

	if got := c.TimeAt(0); !got.Equal(base) {
		t.Fatalf("tick 0 = %v, want %v", got, base)
	}
	if got := c.TimeAt(4); !got.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("tick 4 = %v, want base+2h", got)
	}
	if got := c.TimeAt(-5); !got.Equal(base) {
		t.Fatalf("negative tick should clamp to base, got %v", got)
	}
}

func TestClock_PhaseBoundaries(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(ClockConfig{BaseTime: base, TickStep: time.Hour})

	cases := []struct {
		tick int64
		want Phase
	}{
		{0, PhaseNight},
		{5, PhaseNight},
		{6, PhaseMorning},
		{11, PhaseMorning},
		{12, PhaseAfternoon},
		{17, PhaseAfternoon},
		{18, PhaseEvening},
		{22, PhaseEvening},
		{23, PhaseNight},
	}
	for _, tc := range cases {
		if got := c.PhaseAt(tc.tick); got != tc.want {
			t.Fatalf("phase at tick %d = %s, want %s", tc.tick, got, tc.want)
		}
	}
}

func TestClock_TicksBetween(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(ClockConfig{BaseTime: base, TickStep: time.Hour})

	if got := c.TicksBetween(0, base.Add(3*time.Hour+30*time.Minute)); got != 3 {
		t.Fatalf("expected 3 whole ticks, got %d", got)
	}
	if got := c.TicksBetween(10, base.Add(time.Hour)); got != 0 {
		t.Fatalf("past instant should yield 0 ticks, got %d", got)
	}
}
