package gormstore

import (
	"context"

	"examrecord/internal/store/model"

	"gorm.io/gorm/clause"
)

func (s *Store) RegionBySlug(ctx context.Context, slug string) (*model.Region, error) {
	var r model.Region
	ok, err := s.first(ctx, &r, "slug = ?", slug)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) RegionByID(ctx context.Context, id uint) (*model.Region, error) {
	var r model.Region
	ok, err := s.first(ctx, &r, "id = ?", id)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) DisciplineBySlug(ctx context.Context, slug string) (*model.Discipline, error) {
	var d model.Discipline
	ok, err := s.first(ctx, &d, "slug = ?", slug)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

// UpsertRegion inserts the region or refreshes its display name. Seeding
// runs on every start, so this has to be idempotent.
func (s *Store) UpsertRegion(ctx context.Context, r *model.Region) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(r).Error
}

func (s *Store) UpsertDiscipline(ctx context.Context, d *model.Discipline) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(d).Error
}

func (s *Store) DisciplineByID(ctx context.Context, id uint) (*model.Discipline, error) {
	var d model.Discipline
	ok, err := s.first(ctx, &d, "id = ?", id)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

func (s *Store) EventByID(ctx context.Context, id uint) (*model.ExamEvent, error) {
	var e model.ExamEvent
	ok, err := s.first(ctx, &e, "id = ?", id)
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

func (s *Store) EventByTriple(ctx context.Context, year int, regionID, disciplineID uint) (*model.ExamEvent, error) {
	var e model.ExamEvent
	ok, err := s.first(ctx, &e, "year = ? AND region_id = ? AND discipline_id = ?", year, regionID, disciplineID)
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *model.ExamEvent) error {
	return s.db.WithContext(ctx).Create(e).Error
}
