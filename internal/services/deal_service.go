// Package services – DealService
//
// This file implements the deal lifecycle: creation with defaults, partial
// updates merged over the stored row, deletion, and the advisory name-
// uniqueness probe. It enforces the one server-side pipeline rule: a deal on
// a stage with probability >= 40 must carry both a close date and a deal
// value, because from that point on the deal materially moves the forecast.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
)

// commitProbability is the stage probability from which a close date and a
// deal value become mandatory.
const commitProbability = 40

// DealInput is a partial deal payload. Nil fields keep the stored value on
// update and fall back to defaults on create.
type DealInput struct {
	DealName     *string  `json:"deal_name"`
	ContactName  *string  `json:"contact_name"`
	SourceID     *uint    `json:"source_id"`
	PartnerID    *uint    `json:"partner_id"`
	PlatformID   *uint    `json:"platform_id"`
	ProductID    *uint    `json:"product_id"`
	StageID      *uint    `json:"deal_stage_id"`
	Status       *string  `json:"status"`
	OpenDate     *string  `json:"open_date"`
	CloseMonth   *int     `json:"close_month"`
	CloseYear    *int     `json:"close_year"`
	DealValue    *float64 `json:"deal_value"`
	Notes        *string  `json:"notes"`
	NextStepDate *string  `json:"next_step_date"`
	IsPriority   *bool    `json:"is_priority"`
	RowColor     *string  `json:"row_color"`
}

// DealService implements deal CRUD with pipeline validation.
type DealService struct {
	DB    *gorm.DB
	Clock Clock
}

// NewDealService constructs a DealService on the system clock.
func NewDealService(db *gorm.DB) *DealService {
	return &DealService{DB: db, Clock: SystemClock{}}
}

// List returns all deals with resolved lookup names, sorted by the given
// whitelisted key.
func (s *DealService) List(ctx context.Context, sort, order string) ([]repo.DealWithNames, error) {
	return repo.ListDeals(ctx, s.DB, sort, order)
}

// Get fetches one deal with resolved lookup names.
func (s *DealService) Get(ctx context.Context, id uint) (*repo.DealWithNames, error) {
	d, err := repo.GetDealWithNames(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrDealNotFound
	}
	return d, err
}

// Create inserts a new deal. Missing fields default to a fresh active deal
// opened today.
func (s *DealService) Create(ctx context.Context, in DealInput) (*repo.DealWithNames, error) {
	d := domain.Deal{
		DealName:     "New Deal",
		Status:       domain.StatusActive,
		OpenDate:     s.Clock.Now().Format("2006-01-02"),
		ContactName:  in.ContactName,
		SourceID:     in.SourceID,
		PartnerID:    in.PartnerID,
		PlatformID:   in.PlatformID,
		ProductID:    in.ProductID,
		StageID:      in.StageID,
		CloseMonth:   in.CloseMonth,
		CloseYear:    in.CloseYear,
		DealValue:    in.DealValue,
		Notes:        in.Notes,
		NextStepDate: in.NextStepDate,
		RowColor:     in.RowColor,
	}
	if in.DealName != nil && strings.TrimSpace(*in.DealName) != "" {
		d.DealName = strings.TrimSpace(*in.DealName)
	}
	if in.Status != nil {
		d.Status = *in.Status
	}
	if in.OpenDate != nil {
		d.OpenDate = *in.OpenDate
	}
	if in.IsPriority != nil {
		d.IsPriority = *in.IsPriority
	}

	if err := s.validate(ctx, &d); err != nil {
		return nil, err
	}
	if err := repo.CreateDeal(ctx, s.DB, &d); err != nil {
		return nil, err
	}
	return repo.GetDealWithNames(ctx, s.DB, d.ID)
}

// Update merges the input over the stored row and persists the result.
// Nil input fields keep the stored value.
func (s *DealService) Update(ctx context.Context, id uint, in DealInput) (*repo.DealWithNames, error) {
	d, err := repo.GetDeal(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}

	mergeDeal(d, in)

	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}
	if err := repo.UpdateDeal(ctx, s.DB, d); err != nil {
		return nil, err
	}
	return repo.GetDealWithNames(ctx, s.DB, id)
}

// Delete removes a deal explicitly (outside the month-close archiver).
func (s *DealService) Delete(ctx context.Context, id uint) error {
	err := repo.DeleteDeal(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrDealNotFound
	}
	return err
}

// CheckName reports whether name is free (case-insensitive), ignoring the
// deal identified by excludeID. Purely advisory: creation never enforces it.
func (s *DealService) CheckName(ctx context.Context, name string, excludeID uint) (bool, error) {
	exists, err := repo.DealNameExists(ctx, s.DB, strings.TrimSpace(name), excludeID)
	return !exists, err
}

// validate checks the status enum and the commit-stage rule.
func (s *DealService) validate(ctx context.Context, d *domain.Deal) error {
	switch d.Status {
	case domain.StatusActive, domain.StatusKeepWarm, domain.StatusWon, domain.StatusLost:
	default:
		return ErrInvalidStatus
	}

	if d.StageID == nil {
		return nil
	}
	stage, err := repo.GetStage(ctx, s.DB, *d.StageID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrStageNotFound
		}
		return err
	}
	if stage.Probability >= commitProbability {
		if d.CloseMonth == nil || d.CloseYear == nil {
			return ErrCloseDateRequired
		}
		if d.DealValue == nil {
			return ErrDealValueRequired
		}
	}
	return nil
}

func mergeDeal(d *domain.Deal, in DealInput) {
	if in.DealName != nil {
		d.DealName = strings.TrimSpace(*in.DealName)
	}
	if in.ContactName != nil {
		d.ContactName = in.ContactName
	}
	if in.SourceID != nil {
		d.SourceID = in.SourceID
	}
	if in.PartnerID != nil {
		d.PartnerID = in.PartnerID
	}
	if in.PlatformID != nil {
		d.PlatformID = in.PlatformID
	}
	if in.ProductID != nil {
		d.ProductID = in.ProductID
	}
	if in.StageID != nil {
		d.StageID = in.StageID
	}
	if in.Status != nil {
		d.Status = *in.Status
	}
	if in.OpenDate != nil {
		d.OpenDate = *in.OpenDate
	}
	if in.CloseMonth != nil {
		d.CloseMonth = in.CloseMonth
	}
	if in.CloseYear != nil {
		d.CloseYear = in.CloseYear
	}
	if in.DealValue != nil {
		d.DealValue = in.DealValue
	}
	if in.Notes != nil {
		d.Notes = in.Notes
	}
	if in.NextStepDate != nil {
		d.NextStepDate = in.NextStepDate
	}
	if in.IsPriority != nil {
		d.IsPriority = *in.IsPriority
	}
	if in.RowColor != nil {
		d.RowColor = in.RowColor
	}
}
