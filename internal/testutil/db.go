// Package testutil wires an in-memory SQLite database for package tests.
package testutil

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"socialdesk/internal/core/database"
	"socialdesk/internal/feature/user"
	"socialdesk/internal/repo"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// NewDB opens a private, migrated in-memory database for t. A single connection
// keeps the shared-cache database alive and serialises access like a real store lock.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := unsafeChars.ReplaceAllString(t.Name(), "_") + "_" + uuid.NewString()[:8]
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts an identity row and returns its id.
func SeedUser(t testing.TB, db *gorm.DB, email, displayName string) string {
	t.Helper()
	u := user.UserModel{ID: uuid.NewString(), Email: email, DisplayName: displayName}
	if err := db.WithContext(context.Background()).Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u.ID
}
