// Package services – CloseService
//
// This file implements the month-close engine: forecast aggregation over the
// active pipeline, the snapshot upsert, archival of terminal (won/lost)
// deals, and the append-only close ledger that makes the whole operation
// idempotent. One orchestration function serves both trigger paths (the
// manual HTTP endpoint and the midnight scheduler).
//
// Unlike the ancestor design, the four steps run inside a single database
// transaction, so a close that fails midway leaves no partial effects and
// two concurrent closes cannot double-archive the same deals.
//
// Observability: the orchestration is OpenTelemetry-instrumented; spans carry
// the target month/year and the trigger label.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
)

// CloseResult summarizes a completed month-close run.
type CloseResult struct {
	Success               bool    `json:"success"`
	ClosedMonth           int     `json:"closedMonth"`
	ClosedYear            int     `json:"closedYear"`
	SnapshotID            uint    `json:"snapshotId"`
	TotalWeightedForecast float64 `json:"totalWeightedForecast"`
	DealCount             int     `json:"dealCount"`
	ArchivedCount         int     `json:"archivedCount"`
}

// UpdateResult summarizes a prior-month snapshot recompute.
type UpdateResult struct {
	Success               bool    `json:"success"`
	UpdatedMonth          int     `json:"updatedMonth"`
	UpdatedYear           int     `json:"updatedYear"`
	TotalWeightedForecast float64 `json:"totalWeightedForecast"`
	DealCount             int     `json:"dealCount"`
}

// CloseStatus is the close-month dashboard state. ShouldFlash is a UI nudge:
// true when fewer than 5 days remain in the current month and the prior
// month has not been closed yet.
type CloseStatus struct {
	CurrentMonth     int  `json:"currentMonth"`
	CurrentYear      int  `json:"currentYear"`
	PriorMonth       int  `json:"priorMonth"`
	PriorYear        int  `json:"priorYear"`
	PriorMonthClosed bool `json:"priorMonthClosed"`
	DaysRemaining    int  `json:"daysRemaining"`
	ShouldFlash      bool `json:"shouldFlash"`
}

// flashWindowDays is the end-of-month window that arms ShouldFlash.
const flashWindowDays = 5

// CloseService orchestrates the month-close engine. The Clock is injected so
// "the month that just ended" can be derived for arbitrary test dates.
type CloseService struct {
	DB    *gorm.DB
	Clock Clock
}

// NewCloseService constructs a CloseService on the system clock.
func NewCloseService(db *gorm.DB) *CloseService {
	return &CloseService{DB: db, Clock: SystemClock{}}
}

// CloseMonth runs the full close for the month preceding now:
//
//  1. aggregate the weighted forecast over all non-terminal deals,
//  2. upsert the (month, year) snapshot and rebuild its breakdown rows,
//  3. archive every won/lost deal tagged with the target month,
//  4. append the ledger row unless the month is already closed.
//
// Re-closing an already-closed month is allowed and treated as a re-run: the
// snapshot is recomputed and newly terminal deals are archived, but the
// original ledger entry is preserved.
func (s *CloseService) CloseMonth(ctx context.Context, closedBy string) (*CloseResult, error) {
	month, year := PriorMonth(s.Clock.Now())

	ctx, span := otel.Tracer("services").Start(ctx, "CloseService.CloseMonth")
	defer span.End()
	span.SetAttributes(
		attribute.Int("close.month", month),
		attribute.Int("close.year", year),
		attribute.String("close.trigger", closedBy),
	)

	if closedBy != domain.ClosedByManual && closedBy != domain.ClosedByAuto {
		closedBy = domain.ClosedByManual
	}

	var res CloseResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deals, err := repo.ActiveDeals(ctx, tx)
		if err != nil {
			return err
		}
		sum := AggregateForecast(deals)

		snapshotID, err := s.upsertSnapshot(ctx, tx, month, year, sum)
		if err != nil {
			return err
		}

		archived, err := s.archiveTerminal(ctx, tx, month, year)
		if err != nil {
			return err
		}

		err = repo.InsertCloseLog(ctx, tx, &domain.CloseMonthLog{
			ClosedMonth: month,
			ClosedYear:  year,
			ClosedBy:    closedBy,
		})
		if err != nil && !errors.Is(err, repo.ErrDuplicate) {
			return err
		}

		res = CloseResult{
			Success:               true,
			ClosedMonth:           month,
			ClosedYear:            year,
			SnapshotID:            snapshotID,
			TotalWeightedForecast: sum.TotalWeightedForecast,
			DealCount:             sum.TotalDealCount,
			ArchivedCount:         archived,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdatePriorMonth recomputes the prior month's snapshot from the current
// pipeline without archiving or touching the ledger. It is a forecast
// correction tool for a month already closed: when no snapshot exists it
// returns ErrNoSnapshot and performs no writes.
func (s *CloseService) UpdatePriorMonth(ctx context.Context) (*UpdateResult, error) {
	month, year := PriorMonth(s.Clock.Now())

	var res UpdateResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := repo.GetSnapshotByMonth(ctx, tx, month, year)
		if err != nil {
			if repo.IsSnapshotMissing(err) {
				return ErrNoSnapshot
			}
			return err
		}

		deals, err := repo.ActiveDeals(ctx, tx)
		if err != nil {
			return err
		}
		sum := AggregateForecast(deals)

		if err := repo.UpdateSnapshotTotals(ctx, tx, snap.ID, sum.TotalWeightedForecast, sum.TotalDealCount); err != nil {
			return err
		}
		if err := repo.ReplaceBreakdowns(ctx, tx, snap.ID, sum.BreakdownRows()); err != nil {
			return err
		}

		res = UpdateResult{
			Success:               true,
			UpdatedMonth:          month,
			UpdatedYear:           year,
			TotalWeightedForecast: sum.TotalWeightedForecast,
			DealCount:             sum.TotalDealCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Status reports the close-month dashboard state for now.
func (s *CloseService) Status(ctx context.Context) (*CloseStatus, error) {
	now := s.Clock.Now()
	month, year := PriorMonth(now)

	closed, err := repo.IsMonthClosed(ctx, s.DB, month, year)
	if err != nil {
		return nil, err
	}

	remaining := DaysRemaining(now)
	return &CloseStatus{
		CurrentMonth:     int(now.Month()),
		CurrentYear:      now.Year(),
		PriorMonth:       month,
		PriorYear:        year,
		PriorMonthClosed: closed,
		DaysRemaining:    remaining,
		ShouldFlash:      remaining < flashWindowDays && !closed,
	}, nil
}

// Log returns the close ledger, newest first.
func (s *CloseService) Log(ctx context.Context) ([]domain.CloseMonthLog, error) {
	return repo.ListCloseLog(ctx, s.DB)
}

// Snapshots returns all monthly snapshots with their breakdown rows.
func (s *CloseService) Snapshots(ctx context.Context) ([]domain.MonthlySnapshot, error) {
	return repo.ListSnapshots(ctx, s.DB)
}

// upsertSnapshot creates the (month, year) snapshot or updates it in place,
// then rebuilds the breakdown rows wholesale.
func (s *CloseService) upsertSnapshot(ctx context.Context, tx *gorm.DB, month, year int, sum ForecastSummary) (uint, error) {
	var snapshotID uint
	snap, err := repo.GetSnapshotByMonth(ctx, tx, month, year)
	switch {
	case err == nil:
		snapshotID = snap.ID
		if err := repo.UpdateSnapshotTotals(ctx, tx, snapshotID, sum.TotalWeightedForecast, sum.TotalDealCount); err != nil {
			return 0, err
		}
	case repo.IsSnapshotMissing(err):
		created := &domain.MonthlySnapshot{
			SnapshotMonth:         month,
			SnapshotYear:          year,
			TotalWeightedForecast: sum.TotalWeightedForecast,
			TotalDealCount:        sum.TotalDealCount,
			CreatedAt:             time.Now().UTC(),
		}
		if err := repo.CreateSnapshot(ctx, tx, created); err != nil {
			return 0, err
		}
		snapshotID = created.ID
	default:
		return 0, err
	}

	if err := repo.ReplaceBreakdowns(ctx, tx, snapshotID, sum.BreakdownRows()); err != nil {
		return 0, err
	}
	return snapshotID, nil
}

// archiveTerminal copies every won/lost deal into archived_deals tagged with
// the close target, then deletes the source rows. Names are copied verbatim
// from the joined read so the archive survives later lookup edits.
func (s *CloseService) archiveTerminal(ctx context.Context, tx *gorm.DB, month, year int) (int, error) {
	deals, err := repo.TerminalDeals(ctx, tx)
	if err != nil {
		return 0, err
	}
	for _, d := range deals {
		id := d.ID
		openDate := d.OpenDate
		arch := &domain.ArchivedDeal{
			OriginalDealID:   &id,
			DealName:         d.DealName,
			ContactName:      d.ContactName,
			SourceName:       d.SourceName,
			PartnerName:      d.PartnerName,
			PlatformName:     d.PlatformName,
			ProductName:      d.ProductName,
			StageName:        d.StageName,
			Status:           d.Status,
			OpenDate:         &openDate,
			CloseMonth:       d.CloseMonth,
			CloseYear:        d.CloseYear,
			DealValue:        d.DealValue,
			Notes:            d.Notes,
			ArchivedForMonth: month,
			ArchivedForYear:  year,
		}
		if err := repo.CreateArchivedDeal(ctx, tx, arch); err != nil {
			return 0, err
		}
		if err := repo.DeleteDeal(ctx, tx, d.ID); err != nil {
			return 0, err
		}
	}
	return len(deals), nil
}
