package gormrepo

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"driftworld/internal/adapter/repo/gorm/model"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/world"
)

type CalendarRepo struct {
	db *gorm.DB
}

func NewCalendarRepo(db *gorm.DB) CalendarRepo {
	return CalendarRepo{db: db}
}

func (r CalendarRepo) ListByWorld(ctx context.Context, worldID string) ([]world.CalendarItem, error) {
	rows := []model.CalendarItem{}
	err := getDBFromCtx(ctx, r.db).
		Where("world_id = ?", worldID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]world.CalendarItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, world.CalendarItem{
			ID:            row.ID,
			WorldID:       row.WorldID,
			Owner:         row.Owner,
			Title:         row.Title,
			StartTick:     row.StartTick,
			EndTick:       row.EndTick,
			Kind:          row.Kind,
			Status:        world.ItemStatus(row.Status),
			EveryTicks:    row.EveryTicks,
			RemindersSent: row.RemindersSent,
			Version:       row.Version,
		})
	}
	return out, nil
}

func (r CalendarRepo) Save(ctx context.Context, item world.CalendarItem) error {
	row := model.CalendarItem{
		ID:            item.ID,
		WorldID:       item.WorldID,
		Owner:         item.Owner,
		Title:         item.Title,
		StartTick:     item.StartTick,
		EndTick:       item.EndTick,
		Kind:          item.Kind,
		Status:        string(item.Status),
		EveryTicks:    item.EveryTicks,
		RemindersSent: item.RemindersSent,
		Version:       item.Version,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []world.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.Event, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return err
		}
		rows = append(rows, model.Event{
			ID:        e.ID,
			WorldID:   e.WorldID,
			Tick:      e.Tick,
			Kind:      string(e.Kind),
			Source:    e.Source,
			Target:    e.Target,
			Payload:   payload,
			Processed: e.Processed,
		})
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r EventRepo) ListByWorld(ctx context.Context, worldID string, fromTick, toTick int64, limit int) ([]world.Event, error) {
	query := getDBFromCtx(ctx, r.db).Where("world_id = ?", worldID)
	if fromTick > 0 {
		query = query.Where("tick >= ?", fromTick)
	}
	if toTick > 0 {
		query = query.Where("tick <= ?", toTick)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	rows := []model.Event{}
	if err := query.Order("tick ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]world.Event, 0, len(rows))
	for _, row := range rows {
		var payload world.EventPayload
		if len(row.Payload) > 0 {
			if err := json.Unmarshal(row.Payload, &payload); err != nil {
				return nil, err
			}
		}
		out = append(out, world.Event{
			ID:        row.ID,
			WorldID:   row.WorldID,
			Tick:      row.Tick,
			Kind:      world.EventKind(row.Kind),
			Source:    row.Source,
			Target:    row.Target,
			Payload:   payload,
			Processed: row.Processed,
		})
	}
	return out, nil
}

type CooldownRepo struct {
	db *gorm.DB
}

func NewCooldownRepo(db *gorm.DB) CooldownRepo {
	return CooldownRepo{db: db}
}

func (r CooldownRepo) Get(ctx context.Context, agentID string) (int64, error) {
	var m model.Cooldown
	if err := getDBFromCtx(ctx, r.db).Where("agent_id = ?", agentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ports.ErrNotFound
		}
		return 0, err
	}
	return m.UntilTick, nil
}

func (r CooldownRepo) Set(ctx context.Context, agentID string, untilTick int64) error {
	row := model.Cooldown{AgentID: agentID, UntilTick: untilTick}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "agent_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

type CycleExecutionRepo struct {
	db *gorm.DB
}

func NewCycleExecutionRepo(db *gorm.DB) CycleExecutionRepo {
	return CycleExecutionRepo{db: db}
}

func (r CycleExecutionRepo) GetByIdempotencyKey(ctx context.Context, worldID, key string) (*ports.CycleExecutionRecord, error) {
	var m model.CycleExecution
	err := getDBFromCtx(ctx, r.db).
		Where("world_id = ? AND idempotency_key = ?", worldID, key).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &ports.CycleExecutionRecord{
		WorldID:        m.WorldID,
		IdempotencyKey: m.IdempotencyKey,
		Narration:      m.Narration,
		Degraded:       m.Degraded,
		AppliedAt:      m.AppliedAt,
	}, nil
}

func (r CycleExecutionRepo) Save(ctx context.Context, record ports.CycleExecutionRecord) error {
	row := model.CycleExecution{
		WorldID:        record.WorldID,
		IdempotencyKey: record.IdempotencyKey,
		Narration:      record.Narration,
		Degraded:       record.Degraded,
		AppliedAt:      record.AppliedAt,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}
