package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func strptr(v string) *string     { return &v }
func floatptr(v float64) *float64 { return &v }

func TestDealJoins_ResolveLookupNames(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	st := domain.Stage{Name: "Proposal", Probability: 50}
	if err := CreateStage(ctx, db, &st); err != nil {
		t.Fatalf("stage: %v", err)
	}
	prod := domain.ListItem{ListType: domain.ListTypeProduct, Value: "Product X"}
	if err := CreateListItem(ctx, db, &prod); err != nil {
		t.Fatalf("item: %v", err)
	}

	d := domain.Deal{
		DealName: "Acme", Status: domain.StatusActive, OpenDate: "2026-08-01",
		StageID: &st.ID, ProductID: &prod.ID, DealValue: floatptr(1000),
	}
	if err := CreateDeal(ctx, db, &d); err != nil {
		t.Fatalf("deal: %v", err)
	}

	got, err := GetDealWithNames(ctx, db, d.ID)
	if err != nil {
		t.Fatalf("GetDealWithNames: %v", err)
	}
	if got.StageName == nil || *got.StageName != "Proposal" {
		t.Fatalf("stage name = %v", got.StageName)
	}
	if got.StageProbability == nil || *got.StageProbability != 50 {
		t.Fatalf("stage probability = %v", got.StageProbability)
	}
	if got.ProductName == nil || *got.ProductName != "Product X" {
		t.Fatalf("product name = %v", got.ProductName)
	}
	// Unset links resolve to nil, not empty strings.
	if got.PartnerName != nil || got.SourceName != nil {
		t.Fatalf("unset lookups must stay nil: %+v", got)
	}

	if _, err := GetDealWithNames(ctx, db, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActiveAndTerminalDeals_SplitByStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, status := range []string{
		domain.StatusActive, domain.StatusKeepWarm, domain.StatusWon, domain.StatusLost,
	} {
		d := domain.Deal{DealName: status, Status: status, OpenDate: "2026-08-01"}
		if err := CreateDeal(ctx, db, &d); err != nil {
			t.Fatalf("deal %s: %v", status, err)
		}
	}

	active, err := ActiveDeals(ctx, db)
	if err != nil {
		t.Fatalf("ActiveDeals: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2 (active + keep_warm)", len(active))
	}
	terminal, err := TerminalDeals(ctx, db)
	if err != nil {
		t.Fatalf("TerminalDeals: %v", err)
	}
	if len(terminal) != 2 {
		t.Fatalf("terminal = %d, want 2 (won + lost)", len(terminal))
	}
}

func TestDealOrderBy_Whitelist(t *testing.T) {
	cases := []struct {
		sort, order, want string
	}{
		{"deal_name", "asc", "d.deal_name ASC"},
		{"deal_name", "desc", "d.deal_name DESC"},
		{"close_date", "asc", "d.close_year ASC, d.close_month ASC"},
		{"stage", "desc", "ds.probability DESC"},
		{"", "", "d.id ASC"},
		// Anything off the whitelist degrades to the primary key.
		{"deal_name; DROP TABLE deals", "asc", "d.id ASC"},
		{"robert'); --", "desc", "d.id DESC"},
	}
	for _, tc := range cases {
		if got := dealOrderBy(tc.sort, tc.order); got != tc.want {
			t.Fatalf("dealOrderBy(%q, %q) = %q, want %q", tc.sort, tc.order, got, tc.want)
		}
	}
}

func TestDealNameExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := domain.Deal{DealName: "Acme Renewal", Status: domain.StatusActive, OpenDate: "2026-08-01"}
	if err := CreateDeal(ctx, db, &d); err != nil {
		t.Fatalf("deal: %v", err)
	}

	exists, err := DealNameExists(ctx, db, "acme renewal", 0)
	if err != nil || !exists {
		t.Fatalf("case-insensitive match: %v, %v", exists, err)
	}
	exists, err = DealNameExists(ctx, db, "Acme Renewal", d.ID)
	if err != nil || exists {
		t.Fatalf("self-exclusion: %v, %v", exists, err)
	}
}

func TestSnapshotUpsertAndBreakdownReplace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := domain.MonthlySnapshot{SnapshotMonth: 7, SnapshotYear: 2026, TotalWeightedForecast: 6000, TotalDealCount: 2}
	if err := CreateSnapshot(ctx, db, &s); err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}

	// The (month, year) pair is unique.
	dup := domain.MonthlySnapshot{SnapshotMonth: 7, SnapshotYear: 2026}
	if err := CreateSnapshot(ctx, db, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := UpdateSnapshotTotals(ctx, db, s.ID, 7000, 3); err != nil {
		t.Fatalf("UpdateSnapshotTotals: %v", err)
	}
	got, err := GetSnapshotByMonth(ctx, db, 7, 2026)
	if err != nil || got.TotalWeightedForecast != 7000 || got.TotalDealCount != 3 {
		t.Fatalf("updated snapshot = %+v, %v", got, err)
	}

	rows := []domain.SnapshotBreakdown{
		{BreakdownType: domain.BreakdownProduct, BreakdownName: "Product X", DealCount: 1, ForecastValue: 5000},
		{BreakdownType: domain.BreakdownPartner, BreakdownName: "Partner A", DealCount: 2, ForecastValue: 7000},
	}
	if err := ReplaceBreakdowns(ctx, db, s.ID, rows); err != nil {
		t.Fatalf("ReplaceBreakdowns: %v", err)
	}
	// A second replace fully supersedes the first set.
	if err := ReplaceBreakdowns(ctx, db, s.ID, rows[:1]); err != nil {
		t.Fatalf("ReplaceBreakdowns again: %v", err)
	}
	n, err := CountBreakdowns(ctx, db, s.ID)
	if err != nil || n != 1 {
		t.Fatalf("breakdowns = %d, %v; want 1", n, err)
	}

	snaps, err := ListSnapshots(ctx, db)
	if err != nil || len(snaps) != 1 {
		t.Fatalf("ListSnapshots = %+v, %v", snaps, err)
	}
	if len(snaps[0].Breakdowns) != 1 {
		t.Fatalf("breakdowns should preload, got %+v", snaps[0].Breakdowns)
	}

	if err := UpdateSnapshotTotals(ctx, db, 9999, 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseLog_DuplicateMonth(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := domain.CloseMonthLog{ClosedMonth: 7, ClosedYear: 2026, ClosedBy: domain.ClosedByManual}
	if err := InsertCloseLog(ctx, db, &entry); err != nil {
		t.Fatalf("InsertCloseLog: %v", err)
	}
	again := domain.CloseMonthLog{ClosedMonth: 7, ClosedYear: 2026, ClosedBy: domain.ClosedByAuto}
	if err := InsertCloseLog(ctx, db, &again); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	closed, err := IsMonthClosed(ctx, db, 7, 2026)
	if err != nil || !closed {
		t.Fatalf("IsMonthClosed = %v, %v", closed, err)
	}
	closed, err = IsMonthClosed(ctx, db, 8, 2026)
	if err != nil || closed {
		t.Fatalf("IsMonthClosed(8/2026) = %v, %v; want false", closed, err)
	}

	// Same month of a different year is a distinct ledger entry.
	other := domain.CloseMonthLog{ClosedMonth: 7, ClosedYear: 2027, ClosedBy: domain.ClosedByAuto}
	if err := InsertCloseLog(ctx, db, &other); err != nil {
		t.Fatalf("InsertCloseLog other year: %v", err)
	}
	log, err := ListCloseLog(ctx, db)
	if err != nil || len(log) != 2 {
		t.Fatalf("ListCloseLog = %+v, %v", log, err)
	}
	if log[0].ClosedYear != 2027 {
		t.Fatalf("ledger should list newest first, got %+v", log)
	}
}

func TestUserUniqueEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := domain.User{Email: "admin@example.com", PasswordHash: "x", Role: domain.RoleAdmin}
	if err := CreateUser(ctx, db, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	again := domain.User{Email: "admin@example.com", PasswordHash: "y", Role: domain.RoleUser}
	if err := CreateUser(ctx, db, &again); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	stages, err := ListStages(context.Background(), db)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	if len(stages) != 5 {
		t.Fatalf("seeded stages = %d, want 5", len(stages))
	}
	items, err := ListItems(context.Background(), db, domain.ListTypeSource)
	if err != nil || len(items) != 3 {
		t.Fatalf("seeded sources = %+v, %v", items, err)
	}
}

func TestUpdateDeal_ClearsNullableColumns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := domain.Deal{
		DealName: "Acme", Status: domain.StatusActive, OpenDate: "2026-08-01",
		CloseMonth: func() *int { v := 10; return &v }(),
		CloseYear:  func() *int { v := 2026; return &v }(),
		Notes:      strptr("initial"),
	}
	if err := CreateDeal(ctx, db, &d); err != nil {
		t.Fatalf("deal: %v", err)
	}

	d.CloseMonth = nil
	d.CloseYear = nil
	d.Notes = nil
	if err := UpdateDeal(ctx, db, &d); err != nil {
		t.Fatalf("UpdateDeal: %v", err)
	}

	got, err := GetDeal(ctx, db, d.ID)
	if err != nil {
		t.Fatalf("GetDeal: %v", err)
	}
	if got.CloseMonth != nil || got.CloseYear != nil || got.Notes != nil {
		t.Fatalf("cleared fields should persist as NULL: %+v", got)
	}
}
