// Package replay exposes the persisted event ledger over a tick window so
// past days can be reconstructed exactly as they ran.
package replay

import (
	"context"
	"errors"

	"driftworld/internal/app/ports"
	"driftworld/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const defaultLimit = 500

type UseCase struct {
	WorldRepo ports.WorldRepository
	EventRepo ports.EventRepository
}

type Request struct {
	WorldID  string `json:"world_id"`
	FromTick int64  `json:"from_tick"`
	ToTick   int64  `json:"to_tick"`
	Limit    int    `json:"limit,omitempty"`
}

type Response struct {
	WorldID  string        `json:"world_id"`
	Tick     int64         `json:"tick"`
	FromTick int64         `json:"from_tick"`
	ToTick   int64         `json:"to_tick"`
	Events   []world.Event `json:"events"`
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.WorldID == "" || req.FromTick < 0 || (req.ToTick > 0 && req.ToTick < req.FromTick) {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	w, err := u.WorldRepo.GetByID(ctx, req.WorldID)
	if err != nil {
		return Response{}, err
	}
	toTick := req.ToTick
	if toTick == 0 {
		toTick = w.Tick
	}

	events, err := u.EventRepo.ListByWorld(ctx, req.WorldID, req.FromTick, toTick, limit)
	if err != nil {
		return Response{}, err
	}
	return Response{
		WorldID:  w.ID,
		Tick:     w.Tick,
		FromTick: req.FromTick,
		ToTick:   toTick,
		Events:   events,
	}, nil
}
