package domain

// List types recognized for generic lookup items.
const (
	ListTypePartner  = "partner"
	ListTypePlatform = "platform"
	ListTypeProduct  = "product"
	ListTypeSource   = "source"
)

// ValidListType reports whether t names a managed lookup list.
func ValidListType(t string) bool {
	switch t {
	case ListTypePartner, ListTypePlatform, ListTypeProduct, ListTypeSource:
		return true
	}
	return false
}

// Stage represents a named pipeline phase carrying a win probability used as
// the forecast weight. A deal's weighted forecast is
// deal_value × probability / 100.
type Stage struct {
	ID          uint   `json:"id"          gorm:"primaryKey"`
	Name        string `json:"name"        gorm:"type:varchar(128);not null"`
	Probability int    `json:"probability" gorm:"not null;default:0;check:probability BETWEEN 0 AND 100"`
	SortOrder   int    `json:"sort_order"  gorm:"not null;default:0"`
}

// TableName returns the database table name for Stage.
func (Stage) TableName() string { return "deal_stages" }

// ListItem is a labeled lookup value shared by the partner, platform,
// product, and source dimensions. The list_type column discriminates which
// list a row belongs to.
type ListItem struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	ListType  string `json:"list_type"  gorm:"type:varchar(16);not null;index;check:list_type IN ('partner','platform','product','source')"`
	Value     string `json:"value"      gorm:"type:varchar(128);not null"`
	SortOrder int    `json:"sort_order" gorm:"not null;default:0"`
}

// TableName returns the database table name for ListItem.
func (ListItem) TableName() string { return "list_items" }
