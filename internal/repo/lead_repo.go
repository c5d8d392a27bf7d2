// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Lead model.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// ListLeads returns all leads, unprocessed ("new") first, then most recently
// received.
func ListLeads(ctx context.Context, db *gorm.DB) ([]domain.Lead, error) {
	var out []domain.Lead
	err := db.WithContext(ctx).
		Order("CASE WHEN status = 'new' THEN 0 ELSE 1 END, received_date DESC, created_at DESC").
		Find(&out).Error
	return out, err
}

// GetLead fetches a lead by ID, or ErrNotFound.
func GetLead(ctx context.Context, db *gorm.DB, id uint) (*domain.Lead, error) {
	var l domain.Lead
	if err := db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLead inserts a new lead row.
func CreateLead(ctx context.Context, db *gorm.DB, l *domain.Lead) error {
	return db.WithContext(ctx).Create(l).Error
}

// UpdateLeadStatus sets a lead's status and, optionally, the deal it was
// converted into.
func UpdateLeadStatus(ctx context.Context, db *gorm.DB, id uint, status string, convertedDealID *uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            status,
			"converted_deal_id": convertedDealID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLead removes a lead row by ID.
func DeleteLead(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Lead{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
