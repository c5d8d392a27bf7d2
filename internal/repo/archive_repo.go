// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ArchivedDeal model.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// ListArchivedDeals returns archived deals with the given terminal status,
// most recently closed months first.
func ListArchivedDeals(ctx context.Context, db *gorm.DB, status string) ([]domain.ArchivedDeal, error) {
	var out []domain.ArchivedDeal
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("archived_for_year DESC, archived_for_month DESC, archived_at DESC").
		Find(&out).Error
	return out, err
}

// GetArchivedDeal fetches an archived deal by ID, or ErrNotFound.
func GetArchivedDeal(ctx context.Context, db *gorm.DB, id uint) (*domain.ArchivedDeal, error) {
	var a domain.ArchivedDeal
	if err := db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArchivedDeal inserts an archive row. Used by the month-close archiver
// and by the historical backfill import endpoint.
func CreateArchivedDeal(ctx context.Context, db *gorm.DB, a *domain.ArchivedDeal) error {
	return db.WithContext(ctx).Create(a).Error
}

// UpdateArchivedDeal persists all editable columns of an archive row.
// Select("*") writes cleared nullable fields as NULL.
func UpdateArchivedDeal(ctx context.Context, db *gorm.DB, a *domain.ArchivedDeal) error {
	res := db.WithContext(ctx).
		Model(a).
		Select("*").
		Omit("id", "archived_at", "archived_for_month", "archived_for_year").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteArchivedDeal removes an archive row by ID.
func DeleteArchivedDeal(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.ArchivedDeal{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
