package gormrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"driftworld/internal/adapter/repo/gorm/model"
	"driftworld/internal/domain/psyche"
)

type MemoryRepo struct {
	db *gorm.DB
}

func NewMemoryRepo(db *gorm.DB) MemoryRepo {
	return MemoryRepo{db: db}
}

func (r MemoryRepo) Append(ctx context.Context, m psyche.Memory) error {
	row := model.Memory{
		ID:       m.ID,
		Owner:    m.Owner,
		Kind:     string(m.Kind),
		Text:     m.Text,
		Tick:     m.Tick,
		Salience: m.Salience,
	}
	// Deterministic ids make replayed appends harmless.
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r MemoryRepo) ListByOwner(ctx context.Context, owner string, limit int) ([]psyche.Memory, error) {
	rows := []model.Memory{}
	query := getDBFromCtx(ctx, r.db).
		Where("owner = ?", owner).
		Order("tick ASC, id ASC")
	if limit > 0 {
		// Keep the most recent rows while preserving ascending order.
		sub := r.db.Model(&model.Memory{}).
			Select("id").
			Where("owner = ?", owner).
			Order("tick DESC, id DESC").
			Limit(limit)
		query = getDBFromCtx(ctx, r.db).
			Where("id IN (?)", sub).
			Order("tick ASC, id ASC")
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]psyche.Memory, 0, len(rows))
	for _, row := range rows {
		out = append(out, psyche.Memory{
			ID:       row.ID,
			Owner:    row.Owner,
			Kind:     psyche.MemoryKind(row.Kind),
			Text:     row.Text,
			Tick:     row.Tick,
			Salience: row.Salience,
		})
	}
	return out, nil
}

type ArcRepo struct {
	db *gorm.DB
}

func NewArcRepo(db *gorm.DB) ArcRepo {
	return ArcRepo{db: db}
}

func (r ArcRepo) ListByOwner(ctx context.Context, owner string) ([]psyche.Arc, error) {
	rows := []model.Arc{}
	err := getDBFromCtx(ctx, r.db).
		Where("owner = ?", owner).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]psyche.Arc, 0, len(rows))
	for _, row := range rows {
		out = append(out, psyche.Arc{
			ID:          row.ID,
			Owner:       row.Owner,
			Topic:       row.Topic,
			Intensity:   row.Intensity,
			ValenceBias: row.ValenceBias,
			DecayRate:   row.DecayRate,
			Version:     row.Version,
		})
	}
	return out, nil
}

func (r ArcRepo) Save(ctx context.Context, arc psyche.Arc) error {
	row := model.Arc{
		ID:          arc.ID,
		Owner:       arc.Owner,
		Topic:       arc.Topic,
		Intensity:   arc.Intensity,
		ValenceBias: arc.ValenceBias,
		DecayRate:   arc.DecayRate,
		Version:     arc.Version,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

type IntentionRepo struct {
	db *gorm.DB
}

func NewIntentionRepo(db *gorm.DB) IntentionRepo {
	return IntentionRepo{db: db}
}

func (r IntentionRepo) ListByOwner(ctx context.Context, owner string, includeResolved bool) ([]psyche.Intention, error) {
	query := getDBFromCtx(ctx, r.db).Where("owner = ?", owner)
	if !includeResolved {
		query = query.Where("resolved = ?", false)
	}
	rows := []model.Intention{}
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]psyche.Intention, 0, len(rows))
	for _, row := range rows {
		out = append(out, psyche.Intention{
			ID:          row.ID,
			Owner:       row.Owner,
			Description: row.Description,
			Priority:    row.Priority,
			Horizon:     psyche.Horizon(row.Horizon),
			Stability:   row.Stability,
			Resolved:    row.Resolved,
			Version:     row.Version,
		})
	}
	return out, nil
}

func (r IntentionRepo) Save(ctx context.Context, it psyche.Intention) error {
	row := model.Intention{
		ID:          it.ID,
		Owner:       it.Owner,
		Description: it.Description,
		Priority:    it.Priority,
		Horizon:     string(it.Horizon),
		Stability:   it.Stability,
		Resolved:    it.Resolved,
		Version:     it.Version,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}
