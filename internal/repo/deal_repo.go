// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Deal model,
// including the joined read shapes (deal rows with resolved lookup display
// names) consumed by the forecast aggregator and the archiver.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// DealWithNames is a deal row joined with the current display names of its
// stage and lookup links. The archiver copies these names verbatim into
// archived_deals; the aggregator uses StageProbability and the dimension
// names for grouping.
type DealWithNames struct {
	ID           uint     `json:"id"`
	DealName     string   `json:"deal_name"`
	ContactName  *string  `json:"contact_name"`
	SourceID     *uint    `json:"source_id"`
	PartnerID    *uint    `json:"partner_id"`
	PlatformID   *uint    `json:"platform_id"`
	ProductID    *uint    `json:"product_id"`
	StageID      *uint    `json:"deal_stage_id" gorm:"column:deal_stage_id"`
	Status       string   `json:"status"`
	OpenDate     string   `json:"open_date"`
	CloseMonth   *int     `json:"close_month"`
	CloseYear    *int     `json:"close_year"`
	DealValue    *float64 `json:"deal_value"`
	Notes        *string  `json:"notes"`
	NextStepDate *string  `json:"next_step_date"`
	IsPriority   bool     `json:"is_priority"`
	RowColor     *string  `json:"row_color"`

	StageName        *string `json:"deal_stage_name"        gorm:"column:deal_stage_name"`
	StageProbability *int    `json:"deal_stage_probability" gorm:"column:deal_stage_probability"`
	SourceName       *string `json:"source_name"`
	PartnerName      *string `json:"partner_name"`
	PlatformName     *string `json:"platform_name"`
	ProductName      *string `json:"product_name"`
}

const dealSelect = `d.id, d.deal_name, d.contact_name, d.source_id, d.partner_id, d.platform_id,
	d.product_id, d.deal_stage_id, d.status, d.open_date, d.close_month, d.close_year,
	d.deal_value, d.notes, d.next_step_date, d.is_priority, d.row_color,
	ds.name AS deal_stage_name, ds.probability AS deal_stage_probability,
	src.value AS source_name, p.value AS partner_name,
	pl.value AS platform_name, pr.value AS product_name`

// dealJoin composes the five LEFT JOINs resolving lookup display names.
func dealJoin(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("deals AS d").
		Select(dealSelect).
		Joins("LEFT JOIN deal_stages ds ON d.deal_stage_id = ds.id").
		Joins("LEFT JOIN list_items src ON d.source_id = src.id").
		Joins("LEFT JOIN list_items p ON d.partner_id = p.id").
		Joins("LEFT JOIN list_items pl ON d.platform_id = pl.id").
		Joins("LEFT JOIN list_items pr ON d.product_id = pr.id")
}

// dealOrderBy maps a client sort key to a safe ORDER BY clause. Unknown keys
// fall back to the primary key so the sort parameter can never inject SQL.
func dealOrderBy(sort, order string) string {
	dir := "ASC"
	if order == "desc" {
		dir = "DESC"
	}
	switch sort {
	case "close_date":
		return "d.close_year " + dir + ", d.close_month " + dir
	case "stage":
		return "ds.probability " + dir
	case "platform":
		return "pl.value " + dir
	case "product":
		return "pr.value " + dir
	case "partner":
		return "p.value " + dir
	case "priority":
		return "d.is_priority " + dir
	case "color":
		return "CASE WHEN d.row_color IS NULL THEN 1 ELSE 0 END, d.row_color " + dir
	case "deal_name", "contact_name", "status", "open_date", "deal_value", "next_step_date", "created_at":
		return "d." + sort + " " + dir
	default:
		return "d.id " + dir
	}
}

// ListDeals returns all deals with resolved lookup names, ordered by the
// given whitelisted sort key and direction.
func ListDeals(ctx context.Context, db *gorm.DB, sort, order string) ([]DealWithNames, error) {
	var out []DealWithNames
	err := dealJoin(ctx, db).Order(dealOrderBy(sort, order)).Scan(&out).Error
	return out, err
}

// GetDealWithNames fetches a single deal with resolved lookup names, or
// ErrNotFound if the row does not exist.
func GetDealWithNames(ctx context.Context, db *gorm.DB, id uint) (*DealWithNames, error) {
	var row DealWithNames
	res := dealJoin(ctx, db).Where("d.id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

// ActiveDeals returns every deal whose status is not terminal (won/lost),
// with resolved lookup names. This is the read shape the forecast aggregator
// consumes.
func ActiveDeals(ctx context.Context, db *gorm.DB) ([]DealWithNames, error) {
	var out []DealWithNames
	err := dealJoin(ctx, db).
		Where("d.status NOT IN ?", domain.TerminalStatuses).
		Scan(&out).Error
	return out, err
}

// TerminalDeals returns every deal currently won or lost, with resolved
// lookup names. This is the read shape the archiver consumes.
func TerminalDeals(ctx context.Context, db *gorm.DB) ([]DealWithNames, error) {
	var out []DealWithNames
	err := dealJoin(ctx, db).
		Where("d.status IN ?", domain.TerminalStatuses).
		Scan(&out).Error
	return out, err
}

// CreateDeal inserts a new deal row. The caller is expected to have applied
// defaults (status, open date) beforehand.
func CreateDeal(ctx context.Context, db *gorm.DB, d *domain.Deal) error {
	return db.WithContext(ctx).Create(d).Error
}

// GetDeal fetches a raw deal row by ID, or ErrNotFound.
func GetDeal(ctx context.Context, db *gorm.DB, id uint) (*domain.Deal, error) {
	var d domain.Deal
	if err := db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDeal persists all mutable columns of a deal. Select("*") ensures
// cleared nullable fields (e.g. a removed close date) are written as NULL
// rather than skipped as zero values.
func UpdateDeal(ctx context.Context, db *gorm.DB, d *domain.Deal) error {
	res := db.WithContext(ctx).
		Model(d).
		Select("*").
		Omit("id", "created_at").
		Updates(d)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDeal removes a deal row by ID. Deleting a missing row returns
// ErrNotFound.
func DeleteDeal(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Deal{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DealNameExists reports whether another deal already uses the given name
// (case-insensitive). excludeID ignores the deal being edited, so renaming a
// deal to its own name does not count as a collision.
func DealNameExists(ctx context.Context, db *gorm.DB, name string, excludeID uint) (bool, error) {
	var count int64
	q := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("deal_name = ? COLLATE NOCASE", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}
