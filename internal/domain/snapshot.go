package domain

import "time"

// Breakdown dimensions persisted with a snapshot.
const (
	BreakdownProduct = "product"
	BreakdownPartner = "partner"
)

// UnassignedBucket is the breakdown name used when a deal has no value for
// the grouped dimension.
const UnassignedBucket = "Unassigned"

// MonthlySnapshot is a point-in-time aggregate of the weighted pipeline
// forecast, persisted once per calendar month by the month-close engine.
// The (month, year) pair is unique: re-closing a month updates the existing
// row in place rather than inserting a second one.
type MonthlySnapshot struct {
	ID                    uint      `json:"id"                      gorm:"primaryKey"`
	SnapshotMonth         int       `json:"snapshot_month"          gorm:"not null;uniqueIndex:ux_snapshot_month_year,priority:1"`
	SnapshotYear          int       `json:"snapshot_year"           gorm:"not null;uniqueIndex:ux_snapshot_month_year,priority:2"`
	TotalWeightedForecast float64   `json:"total_weighted_forecast" gorm:"not null;default:0"`
	TotalDealCount        int       `json:"total_deal_count"        gorm:"not null;default:0"`
	CreatedAt             time.Time `json:"created_at"`

	// Breakdowns are owned exclusively by the snapshot and are deleted and
	// fully rebuilt whenever the snapshot is recomputed.
	Breakdowns []SnapshotBreakdown `json:"breakdowns,omitempty" gorm:"foreignKey:SnapshotID"`
}

// TableName returns the database table name for MonthlySnapshot.
func (MonthlySnapshot) TableName() string { return "monthly_snapshots" }

// SnapshotBreakdown is one slice of a snapshot's forecast, grouped by a
// single dimension (product or partner). Deals lacking the dimension fall
// into the "Unassigned" bucket.
type SnapshotBreakdown struct {
	ID            uint    `json:"id"             gorm:"primaryKey"`
	SnapshotID    uint    `json:"snapshot_id"    gorm:"not null;index"`
	BreakdownType string  `json:"breakdown_type" gorm:"type:varchar(16);not null;check:breakdown_type IN ('product','partner')"`
	BreakdownName string  `json:"breakdown_name" gorm:"type:varchar(128);not null"`
	DealCount     int     `json:"deal_count"     gorm:"not null;default:0"`
	ForecastValue float64 `json:"forecast_value" gorm:"not null;default:0"`

	Snapshot MonthlySnapshot `json:"-" gorm:"foreignKey:SnapshotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SnapshotBreakdown.
func (SnapshotBreakdown) TableName() string { return "monthly_snapshot_breakdowns" }
