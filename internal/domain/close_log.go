package domain

import "time"

// Close triggers recorded in the ledger.
const (
	ClosedByManual = "manual"
	ClosedByAuto   = "auto"
)

// CloseMonthLog is an append-only ledger row recording that a calendar month
// has been closed and by what trigger. The unique (month, year) pair makes
// the whole close operation idempotent: a re-close updates the snapshot and
// archive but never writes a second ledger row, so the original trigger and
// timestamp are preserved.
type CloseMonthLog struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	ClosedMonth int       `json:"closed_month" gorm:"not null;uniqueIndex:ux_close_month_year,priority:1"`
	ClosedYear  int       `json:"closed_year"  gorm:"not null;uniqueIndex:ux_close_month_year,priority:2"`
	ClosedBy    string    `json:"closed_by"    gorm:"type:varchar(16);not null;default:'manual';check:closed_by IN ('manual','auto')"`
	ClosedAt    time.Time `json:"closed_at"    gorm:"autoCreateTime"`
}

// TableName returns the database table name for CloseMonthLog.
func (CloseMonthLog) TableName() string { return "close_month_log" }
