// Package domain defines the persistence models for the sales pipeline:
// deals, pipeline stages, lookup lists, monthly forecast snapshots, archived
// deals, the close-month ledger, inbound leads, and users. These types are
// mapped with GORM and form the core data layer of the CRM application.
package domain

import "time"

// Deal statuses. Won and lost are terminal: deals carrying them leave the
// active table during month-close.
const (
	StatusActive   = "active"
	StatusKeepWarm = "keep_warm"
	StatusWon      = "won"
	StatusLost     = "lost"
)

// TerminalStatuses lists the statuses that cause a deal to be archived.
var TerminalStatuses = []string{StatusWon, StatusLost}

// Deal represents a tracked sales opportunity moving through the pipeline.
// Lookup links (stage, partner, platform, product, source) are nullable and
// survive lookup-row deletion via ON DELETE SET NULL.
//
// Fields:
//   - DealName: display name; uniqueness is advisory (a check endpoint exists
//     for UX) and not enforced by the schema.
//   - Status: one of active, keep_warm, won, lost.
//   - OpenDate / NextStepDate: ISO dates (YYYY-MM-DD) stored as DATE columns.
//   - CloseMonth / CloseYear: jointly meaningful expected close date.
//   - DealValue: nullable monetary value used for the weighted forecast.
//   - IsPriority / RowColor: UI affordances persisted with the row.
type Deal struct {
	ID           uint     `json:"id"            gorm:"primaryKey"`
	DealName     string   `json:"deal_name"     gorm:"type:varchar(255);not null"`
	ContactName  *string  `json:"contact_name"  gorm:"type:varchar(255)"`
	SourceID     *uint    `json:"source_id"     gorm:"index"`
	PartnerID    *uint    `json:"partner_id"    gorm:"index"`
	PlatformID   *uint    `json:"platform_id"   gorm:"index"`
	ProductID    *uint    `json:"product_id"    gorm:"index"`
	StageID      *uint    `json:"deal_stage_id" gorm:"column:deal_stage_id;index"`
	Status       string   `json:"status"        gorm:"type:varchar(16);not null;default:'active';check:status IN ('active','keep_warm','won','lost')"`
	OpenDate     string   `json:"open_date"     gorm:"type:date"`
	CloseMonth   *int     `json:"close_month"`
	CloseYear    *int     `json:"close_year"`
	DealValue    *float64 `json:"deal_value"`
	Notes        *string  `json:"notes"         gorm:"type:text"`
	NextStepDate *string  `json:"next_step_date" gorm:"type:date"`
	IsPriority   bool     `json:"is_priority"   gorm:"not null;default:false"`
	RowColor     *string  `json:"row_color"     gorm:"type:varchar(32)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Lookup associations. All are optional and detach (SET NULL) when the
	// referenced row is deleted, so historical deals never block lookup edits.
	Stage    *Stage    `json:"-" gorm:"foreignKey:StageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Source   *ListItem `json:"-" gorm:"foreignKey:SourceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Partner  *ListItem `json:"-" gorm:"foreignKey:PartnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Platform *ListItem `json:"-" gorm:"foreignKey:PlatformID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Product  *ListItem `json:"-" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Deal.
func (Deal) TableName() string { return "deals" }

// Terminal reports whether the deal has left the active pipeline.
func (d Deal) Terminal() bool {
	return d.Status == StatusWon || d.Status == StatusLost
}
