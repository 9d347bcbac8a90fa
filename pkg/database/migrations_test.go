package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/swenshares/migrations"
)

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 1;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"README.md":      {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Version)
	assert.Equal(t, "second", got[0].Name)
	assert.Equal(t, 10, got[1].Version)
}

func TestLoadMigrations_RejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := LoadMigrations(fsys)
	assert.Error(t, err)
}

func TestMigrator_AppliesEmbeddedSchemaOnce(t *testing.T) {
	logger := zap.NewNop()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db")}, logger)
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrator(db, logger)
	require.NoError(t, m.RunMigrationsFS(migrations.FS))
	require.NoError(t, m.RunMigrationsFS(migrations.FS))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	all, err := LoadMigrations(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, len(all), count)

	for _, table := range []string{"registry_records", "audit_entries", "dividends", "notifications", "announcements"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s missing", table)
	}
}
