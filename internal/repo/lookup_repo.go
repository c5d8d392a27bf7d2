// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Stage and
// ListItem lookup models.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// ListStages returns all pipeline stages in configured sort order.
func ListStages(ctx context.Context, db *gorm.DB) ([]domain.Stage, error) {
	var out []domain.Stage
	err := db.WithContext(ctx).Order("sort_order").Find(&out).Error
	return out, err
}

// GetStage fetches a stage by ID, or ErrNotFound.
func GetStage(ctx context.Context, db *gorm.DB, id uint) (*domain.Stage, error) {
	var s domain.Stage
	if err := db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStage inserts a new stage row.
func CreateStage(ctx context.Context, db *gorm.DB, s *domain.Stage) error {
	return db.WithContext(ctx).Create(s).Error
}

// UpdateStage overwrites name, probability, and sort order of a stage.
func UpdateStage(ctx context.Context, db *gorm.DB, s *domain.Stage) error {
	res := db.WithContext(ctx).
		Model(&domain.Stage{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":        s.Name,
			"probability": s.Probability,
			"sort_order":  s.SortOrder,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStage removes a stage. Deals referencing it are detached via the
// ON DELETE SET NULL constraint, not deleted.
func DeleteStage(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Stage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListItems returns the lookup items of one list type in configured sort order.
func ListItems(ctx context.Context, db *gorm.DB, listType string) ([]domain.ListItem, error) {
	var out []domain.ListItem
	err := db.WithContext(ctx).
		Where("list_type = ?", listType).
		Order("sort_order").
		Find(&out).Error
	return out, err
}

// CreateListItem inserts a new lookup item.
func CreateListItem(ctx context.Context, db *gorm.DB, item *domain.ListItem) error {
	return db.WithContext(ctx).Create(item).Error
}

// UpdateListItem overwrites value and sort order of a lookup item within its
// list type.
func UpdateListItem(ctx context.Context, db *gorm.DB, listType string, id uint, value string, sortOrder int) error {
	res := db.WithContext(ctx).
		Model(&domain.ListItem{}).
		Where("id = ? AND list_type = ?", id, listType).
		Updates(map[string]any{"value": value, "sort_order": sortOrder})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteListItem removes a lookup item. Deals referencing it are detached via
// ON DELETE SET NULL.
func DeleteListItem(ctx context.Context, db *gorm.DB, listType string, id uint) error {
	res := db.WithContext(ctx).
		Where("list_type = ?", listType).
		Delete(&domain.ListItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
