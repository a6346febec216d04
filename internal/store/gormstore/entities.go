package gormstore

import (
	"context"
	"strings"

	"examrecord/internal/store/model"
)

func (s *Store) ComposerByID(ctx context.Context, id uint) (*model.Composer, error) {
	var c model.Composer
	ok, err := s.first(ctx, &c, "id = ?", id)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ComposerByWikidataID(ctx context.Context, wikidataID string) (*model.Composer, error) {
	var c model.Composer
	ok, err := s.first(ctx, &c, "wikidata_id = ?", wikidataID)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ComposerByOpenopusID(ctx context.Context, openopusID string) (*model.Composer, error) {
	var c model.Composer
	ok, err := s.first(ctx, &c, "openopus_id = ?", openopusID)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateComposer(ctx context.Context, c *model.Composer) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// SearchComposers does a case-insensitive substring match on the name,
// capped at limit rows.
func (s *Store) SearchComposers(ctx context.Context, query string, limit int) ([]model.Composer, error) {
	var out []model.Composer
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *Store) WorkByID(ctx context.Context, id uint) (*model.Work, error) {
	var w model.Work
	ok, err := s.first(ctx, &w, "id = ?", id)
	if err != nil || !ok {
		return nil, err
	}
	return &w, nil
}

func (s *Store) WorkByOpenopusID(ctx context.Context, openopusID string) (*model.Work, error) {
	var w model.Work
	ok, err := s.first(ctx, &w, "openopus_id = ?", openopusID)
	if err != nil || !ok {
		return nil, err
	}
	return &w, nil
}

func (s *Store) CreateWork(ctx context.Context, w *model.Work) error {
	return s.db.WithContext(ctx).Create(w).Error
}

// SearchWorks matches title or nickname, case-insensitive, capped at limit.
func (s *Store) SearchWorks(ctx context.Context, query string, limit int) ([]model.Work, error) {
	var out []model.Work
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(nickname) LIKE ?", pattern, pattern).
		Order("title").
		Limit(limit).
		Find(&out).Error
	return out, err
}
