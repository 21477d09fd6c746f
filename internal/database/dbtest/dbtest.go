// Package dbtest opens a migrated in-memory sqlite database for tests.
package dbtest

import (
	"testing"

	"maint-logbook/internal/config"
	"maint-logbook/internal/database"
	"maint-logbook/internal/models"

	"gorm.io/gorm"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		DSN:         ":memory:",
		MaxAttempts: 1,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// User inserts a member account with password "password".
func User(t testing.TB, db *gorm.DB, email, fullName string) models.User {
	t.Helper()
	u, err := database.CreateUser(db, email, fullName, "password", models.RoleMember)
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", email, err)
	}
	return *u
}
