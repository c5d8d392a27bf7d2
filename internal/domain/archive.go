package domain

import "time"

// ArchivedDeal is a denormalized copy of a deal taken the moment it left the
// active table. Lookup dimensions are stored as display names, not foreign
// keys: the lookup rows those names came from may later be renamed or deleted
// and the archive must stay readable regardless.
//
// ArchivedForMonth/Year tag the close-month the deal was archived under,
// which can differ from the deal's own CloseMonth/CloseYear (backdated
// deals keep their original close date).
type ArchivedDeal struct {
	ID             uint      `json:"id"                 gorm:"primaryKey"`
	OriginalDealID *uint     `json:"original_deal_id"`
	DealName       string    `json:"deal_name"          gorm:"type:varchar(255);not null"`
	ContactName    *string   `json:"contact_name"       gorm:"type:varchar(255)"`
	SourceName     *string   `json:"source_name"        gorm:"type:varchar(128)"`
	PartnerName    *string   `json:"partner_name"       gorm:"type:varchar(128)"`
	PlatformName   *string   `json:"platform_name"      gorm:"type:varchar(128)"`
	ProductName    *string   `json:"product_name"       gorm:"type:varchar(128)"`
	StageName      *string   `json:"deal_stage_name"    gorm:"column:deal_stage_name;type:varchar(128)"`
	Status         string    `json:"status"             gorm:"type:varchar(16);not null;check:status IN ('won','lost')"`
	OpenDate       *string   `json:"open_date"          gorm:"type:date"`
	CloseMonth     *int      `json:"close_month"`
	CloseYear      *int      `json:"close_year"`
	DealValue      *float64  `json:"deal_value"`
	Notes          *string   `json:"notes"              gorm:"type:text"`
	ArchivedAt     time.Time `json:"archived_at"        gorm:"autoCreateTime"`
	ArchivedForMonth int     `json:"archived_for_month" gorm:"not null;index:idx_archived_for,priority:2"`
	ArchivedForYear  int     `json:"archived_for_year"  gorm:"not null;index:idx_archived_for,priority:1"`
}

// TableName returns the database table name for ArchivedDeal.
func (ArchivedDeal) TableName() string { return "archived_deals" }
