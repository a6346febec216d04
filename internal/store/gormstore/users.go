package gormstore

import (
	"context"
	"strings"

	"examrecord/internal/store/model"
)

func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	ok, err := s.first(ctx, &u, "id = ?", id)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	ok, err := s.first(ctx, &u, "email = ?", strings.ToLower(strings.TrimSpace(email)))
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return s.db.WithContext(ctx).Create(u).Error
}
