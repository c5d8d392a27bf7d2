// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// close-month ledger.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// IsMonthClosed reports whether a ledger entry exists for (month, year).
func IsMonthClosed(ctx context.Context, db *gorm.DB, month, year int) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.CloseMonthLog{}).
		Where("closed_month = ? AND closed_year = ?", month, year).
		Count(&count).Error
	return count > 0, err
}

// InsertCloseLog appends a ledger row for (month, year). The unique index
// maps a concurrent duplicate insert to ErrDuplicate; callers treat that as
// "already closed", keeping the original trigger and timestamp intact.
func InsertCloseLog(ctx context.Context, db *gorm.DB, entry *domain.CloseMonthLog) error {
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListCloseLog returns every ledger row, most recently closed months first.
func ListCloseLog(ctx context.Context, db *gorm.DB) ([]domain.CloseMonthLog, error) {
	var out []domain.CloseMonthLog
	err := db.WithContext(ctx).
		Order("closed_year DESC, closed_month DESC").
		Find(&out).Error
	return out, err
}
