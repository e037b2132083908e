package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"driftworld/internal/adapter/repo/gorm/model"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
)

type RelationshipRepo struct {
	db *gorm.DB
}

func NewRelationshipRepo(db *gorm.DB) RelationshipRepo {
	return RelationshipRepo{db: db}
}

func (r RelationshipRepo) Get(ctx context.Context, source, target string) (psyche.Relationship, error) {
	var m model.Relationship
	err := getDBFromCtx(ctx, r.db).
		Where("source = ? AND target = ?", source, target).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return psyche.Relationship{}, ports.ErrNotFound
		}
		return psyche.Relationship{}, err
	}
	return relationshipFromModel(m), nil
}

func (r RelationshipRepo) ListBySource(ctx context.Context, source string) ([]psyche.Relationship, error) {
	rows := []model.Relationship{}
	err := getDBFromCtx(ctx, r.db).
		Where("source = ?", source).
		Order("target ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]psyche.Relationship, 0, len(rows))
	for _, row := range rows {
		out = append(out, relationshipFromModel(row))
	}
	return out, nil
}

func (r RelationshipRepo) Save(ctx context.Context, rel psyche.Relationship) error {
	m := model.Relationship{
		Source:      rel.Source,
		Target:      rel.Target,
		Warmth:      rel.Warmth,
		Trust:       rel.Trust,
		Tension:     rel.Tension,
		Attraction:  rel.Attraction,
		Familiarity: rel.Familiarity,
		Comfort:     rel.Comfort,
		Volatility:  rel.Volatility,
		Version:     rel.Version,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}, {Name: "target"}},
			UpdateAll: true,
		}).
		Create(&m).Error
}

func relationshipFromModel(m model.Relationship) psyche.Relationship {
	return psyche.Relationship{
		Source:      m.Source,
		Target:      m.Target,
		Warmth:      m.Warmth,
		Trust:       m.Trust,
		Tension:     m.Tension,
		Attraction:  m.Attraction,
		Familiarity: m.Familiarity,
		Comfort:     m.Comfort,
		Volatility:  m.Volatility,
		Version:     m.Version,
	}
}
