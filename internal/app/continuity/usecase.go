// Package continuity closes the gap between wall-clock time and the tick
// counter: when a world has been offline, it replays every missed tick
// through the full cycle pipeline so the world state is indistinguishable
// from one that never slept.
package continuity

import (
	"context"
	"errors"
	"time"

	"driftworld/internal/app/cycle"
	"driftworld/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid continuity request")

// DefaultMaxTicks caps one catch-up pass at two weeks of hourly ticks.
const DefaultMaxTicks = 336

type UseCase struct {
	WorldRepo ports.WorldRepository
	Cycle     cycle.UseCase
	MaxTicks  int64
	Now       func() time.Time
}

type Response struct {
	cycle.AdvanceResponse
	TicksBehind int64 `json:"ticks_behind"`
	Truncated   bool  `json:"truncated"`
}

// CatchUp replays the ticks between the world's last position and now. A
// world already at the present returns unchanged; a world further behind
// than the cap advances by the cap and reports the truncation.
func (u UseCase) CatchUp(ctx context.Context, worldID string) (Response, error) {
	if worldID == "" {
		return Response{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	w, err := u.WorldRepo.GetByID(ctx, worldID)
	if err != nil {
		return Response{}, err
	}

	behind := w.Clock().TicksBetween(w.Tick, nowFn())
	if behind == 0 {
		return Response{
			AdvanceResponse: cycle.AdvanceResponse{
				WorldID:   w.ID,
				Tick:      w.Tick,
				ClockTime: w.Now(),
			},
		}, nil
	}

	maxTicks := u.MaxTicks
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	ticks := behind
	truncated := false
	if ticks > maxTicks {
		ticks = maxTicks
		truncated = true
	}

	resp, err := u.Cycle.Advance(ctx, cycle.AdvanceRequest{WorldID: worldID, Ticks: ticks})
	if err != nil {
		return Response{}, err
	}
	return Response{AdvanceResponse: resp, TicksBehind: behind, Truncated: truncated}, nil
}
