package domain

import "time"

// Lead statuses.
const (
	LeadStatusNew       = "new"
	LeadStatusConverted = "converted"
	LeadStatusDismissed = "dismissed"
)

// Lead is an inbound enquiry captured from the website contact form. Leads
// carry PII (names, email, phone) which the HTTP logging layer redacts.
// A converted lead keeps a soft link to the deal it produced.
type Lead struct {
	ID              uint      `json:"id"                gorm:"primaryKey"`
	FirstName       *string   `json:"firstname"         gorm:"column:firstname;type:varchar(128)"`
	LastName        *string   `json:"lastname"          gorm:"column:lastname;type:varchar(128)"`
	Email           *string   `json:"email"             gorm:"type:varchar(255)"`
	Mobile          *string   `json:"mobile"            gorm:"type:varchar(64)"`
	Company         *string   `json:"company"           gorm:"type:varchar(255)"`
	Message         *string   `json:"message"           gorm:"type:text"`
	Source          *string   `json:"source"            gorm:"type:varchar(128)"`
	ReceivedDate    string    `json:"received_date"     gorm:"type:date"`
	Status          string    `json:"status"            gorm:"type:varchar(16);not null;default:'new';check:status IN ('new','converted','dismissed')"`
	ConvertedDealID *uint     `json:"converted_deal_id"`
	CreatedAt       time.Time `json:"created_at"`

	ConvertedDeal *Deal `json:"-" gorm:"foreignKey:ConvertedDealID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "leads" }
