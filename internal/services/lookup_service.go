// Package services – LookupService
//
// Thin pass-through for the stage and lookup-list CRUD. There is no business
// logic here beyond list-type validation; the lookups are plain labeled
// tables and deals detach from them automatically on delete.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
)

// LookupService manages pipeline stages and the generic lookup lists.
type LookupService struct {
	DB *gorm.DB
}

// Stages returns all pipeline stages in sort order.
func (s *LookupService) Stages(ctx context.Context) ([]domain.Stage, error) {
	return repo.ListStages(ctx, s.DB)
}

// CreateStage inserts a stage.
func (s *LookupService) CreateStage(ctx context.Context, st *domain.Stage) error {
	return repo.CreateStage(ctx, s.DB, st)
}

// UpdateStage overwrites a stage's fields.
func (s *LookupService) UpdateStage(ctx context.Context, st *domain.Stage) error {
	err := repo.UpdateStage(ctx, s.DB, st)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrStageNotFound
	}
	return err
}

// DeleteStage removes a stage; deals referencing it are detached.
func (s *LookupService) DeleteStage(ctx context.Context, id uint) error {
	err := repo.DeleteStage(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrStageNotFound
	}
	return err
}

// Items returns the lookup items of one list type.
func (s *LookupService) Items(ctx context.Context, listType string) ([]domain.ListItem, error) {
	if !domain.ValidListType(listType) {
		return nil, ErrInvalidListType
	}
	return repo.ListItems(ctx, s.DB, listType)
}

// CreateItem inserts a lookup item into the given list.
func (s *LookupService) CreateItem(ctx context.Context, listType, value string, sortOrder int) (*domain.ListItem, error) {
	if !domain.ValidListType(listType) {
		return nil, ErrInvalidListType
	}
	item := domain.ListItem{ListType: listType, Value: value, SortOrder: sortOrder}
	if err := repo.CreateListItem(ctx, s.DB, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem overwrites a lookup item's value and sort order.
func (s *LookupService) UpdateItem(ctx context.Context, listType string, id uint, value string, sortOrder int) error {
	if !domain.ValidListType(listType) {
		return ErrInvalidListType
	}
	err := repo.UpdateListItem(ctx, s.DB, listType, id, value, sortOrder)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.ErrNotFound
	}
	return err
}

// DeleteItem removes a lookup item; deals referencing it are detached.
func (s *LookupService) DeleteItem(ctx context.Context, listType string, id uint) error {
	if !domain.ValidListType(listType) {
		return ErrInvalidListType
	}
	return repo.DeleteListItem(ctx, s.DB, listType, id)
}
