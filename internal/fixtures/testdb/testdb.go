// Package testdb opens throwaway databases for tests.
package testdb

import (
	"testing"

	"github.com/amirasaad/studentrelief/infra/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns an in-memory SQLite database with every table migrated.
// The pool is capped at one connection, so code under test must not query
// the base session while a transaction is open.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(repository.Models()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewUoW returns a unit of work over a fresh database together with the database.
func NewUoW(t testing.TB) (*repository.UoW, *gorm.DB) {
	t.Helper()
	db := New(t)
	return repository.NewUoW(db), db
}
