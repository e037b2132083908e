package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"driftworld/internal/adapter/repo/gorm/model"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/world"
)

type WorldRepo struct {
	db *gorm.DB
}

func NewWorldRepo(db *gorm.DB) WorldRepo {
	return WorldRepo{db: db}
}

func (r WorldRepo) GetByID(ctx context.Context, worldID string) (world.World, error) {
	var m model.World
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", worldID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return world.World{}, ports.ErrNotFound
		}
		return world.World{}, err
	}
	return worldFromModel(m)
}

func (r WorldRepo) SaveWithVersion(ctx context.Context, w world.World, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)
	m, err := worldToModel(w)
	if err != nil {
		return err
	}

	res := db.Model(&model.World{}).
		Where("id = ? AND version = ?", w.ID, expectedVersion).
		Updates(map[string]any{
			"tick":       m.Tick,
			"graph":      m.Graph,
			"version":    m.Version,
			"updated_at": m.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// A zero expected version may mean the world does not exist yet.
	if expectedVersion == 0 {
		var count int64
		if err := db.Model(&model.World{}).Where("id = ?", w.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return db.Create(&m).Error
		}
	}
	return ports.ErrConflict
}

func worldToModel(w world.World) (model.World, error) {
	graph, err := json.Marshal(w.Graph)
	if err != nil {
		return model.World{}, err
	}
	return model.World{
		ID:              w.ID,
		Tick:            w.Tick,
		BaseTime:        w.BaseTime,
		TickStepSeconds: int64(w.TickStep / time.Second),
		Graph:           graph,
		Version:         w.Version,
		UpdatedAt:       w.UpdatedAt,
	}, nil
}

func worldFromModel(m model.World) (world.World, error) {
	var graph world.Graph
	if len(m.Graph) > 0 {
		if err := json.Unmarshal(m.Graph, &graph); err != nil {
			return world.World{}, err
		}
	}
	return world.World{
		ID:        m.ID,
		Tick:      m.Tick,
		BaseTime:  m.BaseTime,
		TickStep:  time.Duration(m.TickStepSeconds) * time.Second,
		Graph:     graph,
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
