// Package storetest opens throwaway SQLite databases for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZamarianPatrick/plantwatch-backend/conf"
	"github.com/ZamarianPatrick/plantwatch-backend/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated, empty database in t's temp dir.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := store.Open(conf.DatabaseSettings{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "plants.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(db) })
	return db
}

// OpenSeeded returns a database holding the demo fixture.
func OpenSeeded(t testing.TB) *gorm.DB {
	t.Helper()

	db := Open(t)
	seeded, err := store.SeedDemo(context.Background(), db)
	require.NoError(t, err)
	require.True(t, seeded)
	return db
}
