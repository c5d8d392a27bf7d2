// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for monthly
// forecast snapshots and their breakdown rows.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// GetSnapshotByMonth fetches the snapshot for (month, year), or ErrNotFound.
func GetSnapshotByMonth(ctx context.Context, db *gorm.DB, month, year int) (*domain.MonthlySnapshot, error) {
	var s domain.MonthlySnapshot
	err := db.WithContext(ctx).
		Where("snapshot_month = ? AND snapshot_year = ?", month, year).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSnapshot inserts a new snapshot row. The unique (month, year) index
// maps a concurrent duplicate insert to ErrDuplicate.
func CreateSnapshot(ctx context.Context, db *gorm.DB, s *domain.MonthlySnapshot) error {
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateSnapshotTotals overwrites the aggregate totals of an existing
// snapshot in place.
func UpdateSnapshotTotals(ctx context.Context, db *gorm.DB, id uint, totalForecast float64, dealCount int) error {
	res := db.WithContext(ctx).
		Model(&domain.MonthlySnapshot{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_weighted_forecast": totalForecast,
			"total_deal_count":        dealCount,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceBreakdowns deletes every breakdown row of a snapshot and inserts the
// given rows in their place. Breakdown history is current-state-only: there
// is no incremental update path.
func ReplaceBreakdowns(ctx context.Context, db *gorm.DB, snapshotID uint, rows []domain.SnapshotBreakdown) error {
	h := db.WithContext(ctx)
	if err := h.Where("snapshot_id = ?", snapshotID).
		Delete(&domain.SnapshotBreakdown{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].SnapshotID = snapshotID
	}
	return h.Create(&rows).Error
}

// ListSnapshots returns all snapshots newest-first, each with its breakdown
// rows preloaded (ordered by type, then forecast value descending).
func ListSnapshots(ctx context.Context, db *gorm.DB) ([]domain.MonthlySnapshot, error) {
	var out []domain.MonthlySnapshot
	err := db.WithContext(ctx).
		Preload("Breakdowns", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("breakdown_type, forecast_value DESC")
		}).
		Order("snapshot_year DESC, snapshot_month DESC").
		Find(&out).Error
	return out, err
}

// CountBreakdowns returns the number of breakdown rows attached to a snapshot.
func CountBreakdowns(ctx context.Context, db *gorm.DB, snapshotID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.SnapshotBreakdown{}).
		Where("snapshot_id = ?", snapshotID).
		Count(&total).Error
	return total, err
}

// IsSnapshotMissing reports whether err is the absent-snapshot case.
func IsSnapshotMissing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
