package gormrepo

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"driftworld/internal/adapter/repo/gorm/model"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

type AgentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) AgentRepo {
	return AgentRepo{db: db}
}

func (r AgentRepo) GetByID(ctx context.Context, agentID string) (psyche.Agent, error) {
	var m model.Agent
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", agentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return psyche.Agent{}, ports.ErrNotFound
		}
		return psyche.Agent{}, err
	}
	return agentFromModel(m)
}

func (r AgentRepo) ListByWorld(ctx context.Context, worldID string) ([]psyche.Agent, error) {
	rows := []model.Agent{}
	err := getDBFromCtx(ctx, r.db).
		Where("world_id = ?", worldID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]psyche.Agent, 0, len(rows))
	for _, row := range rows {
		a, err := agentFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r AgentRepo) Save(ctx context.Context, a psyche.Agent) error {
	m, err := agentToModel(a)
	if err != nil {
		return err
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&m).Error
}

func agentToModel(a psyche.Agent) (model.Agent, error) {
	drives, err := json.Marshal(a.Drives)
	if err != nil {
		return model.Agent{}, err
	}
	personality, err := json.Marshal(a.Personality)
	if err != nil {
		return model.Agent{}, err
	}
	routine, err := json.Marshal(a.Routine)
	if err != nil {
		return model.Agent{}, err
	}
	influence, err := json.Marshal(a.Influence)
	if err != nil {
		return model.Agent{}, err
	}
	return model.Agent{
		ID:          a.ID,
		WorldID:     a.WorldID,
		Name:        a.Name,
		Location:    a.Location,
		Protected:   a.Protected,
		Energy:      a.Energy,
		Valence:     a.Mood.Valence,
		Arousal:     a.Mood.Arousal,
		Drives:      drives,
		Personality: personality,
		Routine:     routine,
		Influence:   influence,
		Version:     a.Version,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

func agentFromModel(m model.Agent) (psyche.Agent, error) {
	a := psyche.Agent{
		ID:        m.ID,
		WorldID:   m.WorldID,
		Name:      m.Name,
		Location:  m.Location,
		Protected: m.Protected,
		Energy:    m.Energy,
		Mood:      psyche.Mood{Valence: m.Valence, Arousal: m.Arousal},
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.Drives) > 0 {
		if err := json.Unmarshal(m.Drives, &a.Drives); err != nil {
			return psyche.Agent{}, err
		}
	}
	if len(m.Personality) > 0 {
		if err := json.Unmarshal(m.Personality, &a.Personality); err != nil {
			return psyche.Agent{}, err
		}
	}
	if len(m.Routine) > 0 {
		var routine world.RoutineTable
		if err := json.Unmarshal(m.Routine, &routine); err != nil {
			return psyche.Agent{}, err
		}
		a.Routine = routine
	}
	if len(m.Influence) > 0 {
		if err := json.Unmarshal(m.Influence, &a.Influence); err != nil {
			return psyche.Agent{}, err
		}
	}
	return a, nil
}
