// Package scheduler runs the automatic month-close trigger.
//
// A single goroutine sleeps until the next local midnight, then wakes every
// 24 hours. On the first day of a month it runs the close for the month that
// just ended, unless the ledger already records it. The close itself is
// idempotent, so the ledger pre-check only avoids pointless work; a crash
// between check and close cannot corrupt anything.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
	"github.com/tbourn/go-crm-backend/internal/services"
)

// MonthCloser is the slice of the close service the scheduler needs.
type MonthCloser interface {
	CloseMonth(ctx context.Context, closedBy string) (*services.CloseResult, error)
}

// AutoClose fires the month close at midnight on the first of each month.
type AutoClose struct {
	DB     *gorm.DB
	Closer MonthCloser
	Clock  services.Clock
}

// New constructs an AutoClose on the system clock.
func New(db *gorm.DB, closer MonthCloser) *AutoClose {
	return &AutoClose{DB: db, Closer: closer, Clock: services.SystemClock{}}
}

// Run blocks until ctx is cancelled, waking at every local midnight.
func (a *AutoClose) Run(ctx context.Context) {
	for {
		now := a.Clock.Now()
		wait := time.Until(nextMidnight(now))
		log.Debug().Dur("sleep", wait).Msg("auto-close scheduler armed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			a.tick(ctx)
		}
	}
}

// tick runs one midnight wake-up.
func (a *AutoClose) tick(ctx context.Context) {
	now := a.Clock.Now()
	if now.Day() != 1 {
		return
	}

	month, year := services.PriorMonth(now)
	closed, err := repo.IsMonthClosed(ctx, a.DB, month, year)
	if err != nil {
		log.Error().Err(err).Msg("auto-close: ledger check failed")
		return
	}
	if closed {
		log.Info().Int("month", month).Int("year", year).Msg("auto-close: month already closed")
		return
	}

	res, err := a.Closer.CloseMonth(ctx, domain.ClosedByAuto)
	if err != nil {
		log.Error().Err(err).Int("month", month).Int("year", year).Msg("auto-close failed")
		return
	}
	log.Info().
		Int("month", res.ClosedMonth).
		Int("year", res.ClosedYear).
		Int("archived", res.ArchivedCount).
		Float64("forecast", res.TotalWeightedForecast).
		Msg("auto-close completed")
}

// nextMidnight returns the first instant of the day after now, in now's
// location.
func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
