package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/servisdesk/internal/numbering/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*domain.NumberingState, error) {
	var state domain.NumberingState
	err := db.WithContext(ctx).First(&state, "id = ?", domain.StateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, state *domain.NumberingState) error {
	return db.WithContext(ctx).Save(state).Error
}
