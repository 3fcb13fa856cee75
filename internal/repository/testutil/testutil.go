// Package testutil opens throwaway sqlite ledgers for tests. The raw
// SQL in the repositories sticks to the portable subset, so the suite
// runs without a postgres instance.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/freelance-ledger/internal/model"
)

// DB returns a fresh in-memory database with the ledger schema. The
// pool is capped at one connection so every goroutine shares the same
// sqlite handle and transactions serialize like postgres row locks
// would.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		tb.Fatalf("access pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(
		&model.Profile{},
		&model.Contract{},
		&model.Job{},
		&model.Payment{},
	); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return database
}
