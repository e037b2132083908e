package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"driftworld/internal/app/continuity"
	"driftworld/internal/app/cycle"
	"driftworld/internal/app/observe"
	"driftworld/internal/app/ports"
	"driftworld/internal/app/replay"
	"driftworld/internal/domain/psyche"
)

type Handler struct {
	CycleUC      cycle.UseCase
	ContinuityUC continuity.UseCase
	ObserveUC    observe.UseCase
	ReplayUC     replay.UseCase
	KPI          kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	world := s.Group("/api/world")
	world.POST("/advance", h.advance)
	world.POST("/action", h.action)
	world.POST("/catchup", h.catchup)
	world.GET("/replay", h.replay)

	s.POST("/api/agent/observe", h.observe)
	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) advance(c context.Context, ctx *app.RequestContext) {
	var body cycle.AdvanceRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.CycleUC.Advance(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) action(c context.Context, ctx *app.RequestContext) {
	var body cycle.ActionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.CycleUC.HandleAction(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type catchupRequest struct {
	WorldID string `json:"world_id"`
}

func (h Handler) catchup(c context.Context, ctx *app.RequestContext) {
	var body catchupRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ContinuityUC.CatchUp(c, body.WorldID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) observe(c context.Context, ctx *app.RequestContext) {
	var body observe.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ObserveUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	fromTick, _ := strconv.ParseInt(string(ctx.Query("from_tick")), 10, 64)
	toTick, _ := strconv.ParseInt(string(ctx.Query("to_tick")), 10, 64)
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		WorldID:  string(ctx.Query("world_id")),
		FromTick: fromTick,
		ToTick:   toTick,
		Limit:    limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, psyche.ErrProtectedParticipant):
		// A guard trip is a defect, not a client error; it surfaces loudly.
		writeErrorBody(ctx, consts.StatusInternalServerError, "protected_participant", err.Error())
	case errors.Is(err, psyche.ErrInvalidDecision):
		writeErrorBody(ctx, consts.StatusBadGateway, "invalid_decision", err.Error())
	case errors.Is(err, cycle.ErrInvalidRequest),
		errors.Is(err, observe.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, continuity.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
