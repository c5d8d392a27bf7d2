// Package services – ArchiveService
//
// This file implements operations on archived deals outside the month-close
// path: listing by outcome, direct imports for historical backfill, edits,
// deletion, and restoration back into the active pipeline. Restoration
// creates a fresh active deal with lookup links nulled out, since the stored
// display names cannot be reliably resolved back to lookup IDs.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
)

// ArchiveInput is a partial archived-deal payload. Nil fields keep the stored
// value on update; DealName, Status, and the archived_for tag are required
// on import.
type ArchiveInput struct {
	OriginalDealID   *uint    `json:"original_deal_id"`
	DealName         *string  `json:"deal_name"`
	ContactName      *string  `json:"contact_name"`
	SourceName       *string  `json:"source_name"`
	PartnerName      *string  `json:"partner_name"`
	PlatformName     *string  `json:"platform_name"`
	ProductName      *string  `json:"product_name"`
	StageName        *string  `json:"deal_stage_name"`
	Status           *string  `json:"status"`
	OpenDate         *string  `json:"open_date"`
	CloseMonth       *int     `json:"close_month"`
	CloseYear        *int     `json:"close_year"`
	DealValue        *float64 `json:"deal_value"`
	Notes            *string  `json:"notes"`
	ArchivedForMonth *int     `json:"archived_for_month"`
	ArchivedForYear  *int     `json:"archived_for_year"`
}

// ArchiveService manages archived deals.
type ArchiveService struct {
	DB    *gorm.DB
	Clock Clock
}

// NewArchiveService constructs an ArchiveService on the system clock.
func NewArchiveService(db *gorm.DB) *ArchiveService {
	return &ArchiveService{DB: db, Clock: SystemClock{}}
}

// List returns archived deals with the given terminal outcome.
func (s *ArchiveService) List(ctx context.Context, status string) ([]domain.ArchivedDeal, error) {
	if status != domain.StatusWon && status != domain.StatusLost {
		return nil, ErrInvalidArchiveStatus
	}
	return repo.ListArchivedDeals(ctx, s.DB, status)
}

// Import inserts an archive row directly, bypassing the close engine. Used to
// backfill deals that were won or lost before the system existed.
func (s *ArchiveService) Import(ctx context.Context, in ArchiveInput) (*domain.ArchivedDeal, error) {
	if in.DealName == nil || *in.DealName == "" {
		return nil, ErrArchiveNameRequired
	}
	if in.Status == nil || (*in.Status != domain.StatusWon && *in.Status != domain.StatusLost) {
		return nil, ErrInvalidArchiveStatus
	}
	if in.ArchivedForMonth == nil || in.ArchivedForYear == nil {
		return nil, ErrArchiveMonthRequired
	}

	a := domain.ArchivedDeal{
		OriginalDealID:   in.OriginalDealID,
		DealName:         *in.DealName,
		ContactName:      in.ContactName,
		SourceName:       in.SourceName,
		PartnerName:      in.PartnerName,
		PlatformName:     in.PlatformName,
		ProductName:      in.ProductName,
		StageName:        in.StageName,
		Status:           *in.Status,
		OpenDate:         in.OpenDate,
		CloseMonth:       in.CloseMonth,
		CloseYear:        in.CloseYear,
		DealValue:        in.DealValue,
		Notes:            in.Notes,
		ArchivedForMonth: *in.ArchivedForMonth,
		ArchivedForYear:  *in.ArchivedForYear,
	}
	if err := repo.CreateArchivedDeal(ctx, s.DB, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update merges the input over a stored archive row and persists it.
func (s *ArchiveService) Update(ctx context.Context, id uint, in ArchiveInput) (*domain.ArchivedDeal, error) {
	a, err := repo.GetArchivedDeal(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrArchivedDealNotFound
		}
		return nil, err
	}

	if in.DealName != nil {
		a.DealName = *in.DealName
	}
	if in.ContactName != nil {
		a.ContactName = in.ContactName
	}
	if in.SourceName != nil {
		a.SourceName = in.SourceName
	}
	if in.PartnerName != nil {
		a.PartnerName = in.PartnerName
	}
	if in.PlatformName != nil {
		a.PlatformName = in.PlatformName
	}
	if in.ProductName != nil {
		a.ProductName = in.ProductName
	}
	if in.StageName != nil {
		a.StageName = in.StageName
	}
	if in.Status != nil {
		if *in.Status != domain.StatusWon && *in.Status != domain.StatusLost {
			return nil, ErrInvalidArchiveStatus
		}
		a.Status = *in.Status
	}
	if in.OpenDate != nil {
		a.OpenDate = in.OpenDate
	}
	if in.CloseMonth != nil {
		a.CloseMonth = in.CloseMonth
	}
	if in.CloseYear != nil {
		a.CloseYear = in.CloseYear
	}
	if in.DealValue != nil {
		a.DealValue = in.DealValue
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	if err := repo.UpdateArchivedDeal(ctx, s.DB, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an archive row.
func (s *ArchiveService) Delete(ctx context.Context, id uint) error {
	err := repo.DeleteArchivedDeal(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrArchivedDealNotFound
	}
	return err
}

// Restore moves an archived deal back into the active pipeline: a new deal
// is created with status active and no lookup links, and the archive row is
// removed. Both writes happen in one transaction.
func (s *ArchiveService) Restore(ctx context.Context, id uint) (*repo.DealWithNames, error) {
	var restored *repo.DealWithNames
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := repo.GetArchivedDeal(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrArchivedDealNotFound
			}
			return err
		}

		d := domain.Deal{
			DealName:    a.DealName,
			ContactName: a.ContactName,
			Status:      domain.StatusActive,
			CloseMonth:  a.CloseMonth,
			CloseYear:   a.CloseYear,
			DealValue:   a.DealValue,
			Notes:       a.Notes,
		}
		if a.OpenDate != nil {
			d.OpenDate = *a.OpenDate
		} else {
			// Backfilled archive rows may carry no open date; an active deal
			// always has one, so the restore counts as today's open.
			d.OpenDate = s.Clock.Now().Format("2006-01-02")
		}
		if err := repo.CreateDeal(ctx, tx, &d); err != nil {
			return err
		}
		if err := repo.DeleteArchivedDeal(ctx, tx, id); err != nil {
			return err
		}

		restored, err = repo.GetDealWithNames(ctx, tx, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}
