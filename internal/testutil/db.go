// Package testutil provides an in-memory database for tests.
package testutil

import (
	"testing"

	"esk/training-app/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the schema created from
// the domain models. It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Invite{},
		&domain.Session{},
		&domain.Training{},
		&domain.Exercise{},
		&domain.Upload{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}
