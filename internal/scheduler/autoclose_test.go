package scheduler

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
	"github.com/tbourn/go-crm-backend/internal/services"
)

type stubCloser struct {
	calls    int
	closedBy string
}

func (s *stubCloser) CloseMonth(_ context.Context, closedBy string) (*services.CloseResult, error) {
	s.calls++
	s.closedBy = closedBy
	return &services.CloseResult{Success: true, ClosedMonth: 7, ClosedYear: 2026}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC)
	got := nextMidnight(now)
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("nextMidnight = %v, want %v", got, want)
	}

	// mid-month, mid-day
	now = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	got = nextMidnight(now)
	want = time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("nextMidnight = %v, want %v", got, want)
	}
}

func TestTick_FiresOnlyOnFirstOfMonth(t *testing.T) {
	db := newTestDB(t)
	stub := &stubCloser{}
	a := &AutoClose{DB: db, Closer: stub, Clock: services.FixedClock{T: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)}}

	a.tick(context.Background())
	if stub.calls != 0 {
		t.Fatalf("tick on day 15 should not close, got %d calls", stub.calls)
	}

	a.Clock = services.FixedClock{T: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	a.tick(context.Background())
	if stub.calls != 1 {
		t.Fatalf("tick on day 1 should close once, got %d calls", stub.calls)
	}
	if stub.closedBy != domain.ClosedByAuto {
		t.Fatalf("closedBy = %q, want %q", stub.closedBy, domain.ClosedByAuto)
	}
}

func TestTick_SkipsAlreadyClosedMonth(t *testing.T) {
	db := newTestDB(t)

	// Ledger already records July 2026.
	err := repo.InsertCloseLog(context.Background(), db, &domain.CloseMonthLog{
		ClosedMonth: 7, ClosedYear: 2026, ClosedBy: domain.ClosedByManual,
	})
	if err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	stub := &stubCloser{}
	a := &AutoClose{DB: db, Closer: stub, Clock: services.FixedClock{T: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}}
	a.tick(context.Background())
	if stub.calls != 0 {
		t.Fatalf("tick on already-closed month should skip, got %d calls", stub.calls)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	db := newTestDB(t)
	a := New(db, &stubCloser{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after context cancellation")
	}
}
