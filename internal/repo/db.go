// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and first-run seed data.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Query spans; a no-op unless a tracer provider is registered.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all persistence models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Stage{},
		&domain.ListItem{},
		&domain.Deal{},
		&domain.MonthlySnapshot{},
		&domain.SnapshotBreakdown{},
		&domain.ArchivedDeal{},
		&domain.CloseMonthLog{},
		&domain.Lead{},
		&domain.User{},
	)
}

// Seed inserts the default pipeline stages and lookup items when the
// respective tables are empty. Running it against a populated database is a
// no-op, so it is safe to call on every startup.
func Seed(db *gorm.DB) error {
	var stageCount int64
	if err := db.Model(&domain.Stage{}).Count(&stageCount).Error; err != nil {
		return err
	}
	if stageCount == 0 {
		stages := []domain.Stage{
			{Name: "Prospect", Probability: 10, SortOrder: 1},
			{Name: "Qualified", Probability: 25, SortOrder: 2},
			{Name: "Proposal", Probability: 50, SortOrder: 3},
			{Name: "Negotiation", Probability: 75, SortOrder: 4},
			{Name: "Closed Won", Probability: 100, SortOrder: 5},
		}
		if err := db.Create(&stages).Error; err != nil {
			return err
		}
	}

	var listCount int64
	if err := db.Model(&domain.ListItem{}).Count(&listCount).Error; err != nil {
		return err
	}
	if listCount == 0 {
		items := []domain.ListItem{
			{ListType: domain.ListTypePartner, Value: "Partner A", SortOrder: 1},
			{ListType: domain.ListTypePartner, Value: "Partner B", SortOrder: 2},
			{ListType: domain.ListTypePartner, Value: "Direct", SortOrder: 3},
			{ListType: domain.ListTypePlatform, Value: "Web", SortOrder: 1},
			{ListType: domain.ListTypePlatform, Value: "Mobile", SortOrder: 2},
			{ListType: domain.ListTypePlatform, Value: "Desktop", SortOrder: 3},
			{ListType: domain.ListTypeProduct, Value: "Product X", SortOrder: 1},
			{ListType: domain.ListTypeProduct, Value: "Product Y", SortOrder: 2},
			{ListType: domain.ListTypeProduct, Value: "Service Z", SortOrder: 3},
			{ListType: domain.ListTypeSource, Value: "Referral", SortOrder: 1},
			{ListType: domain.ListTypeSource, Value: "Website", SortOrder: 2},
			{ListType: domain.ListTypeSource, Value: "Outbound", SortOrder: 3},
		}
		if err := db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}
