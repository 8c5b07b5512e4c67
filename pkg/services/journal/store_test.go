package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates an in-memory SQLite store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(&DatabaseConfig{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: memoryPath},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen(t *testing.T) {
	t.Run("InvalidConfig", func(t *testing.T) {
		_, err := Open(&DatabaseConfig{Type: "oracle"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid database configuration")
	})

	t.Run("CreatesDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "journal.db")
		store, err := Open(&DatabaseConfig{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: path}})
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		assert.FileExists(t, path)
		assert.NoError(t, store.Healthcheck(context.Background()))
	})
}

func TestRecordStartAndStop(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	boot := &Boot{Hostname: "host-a", PID: 42, Version: "v1.0.0"}
	require.NoError(t, store.RecordStart(ctx, boot))
	assert.Len(t, boot.ID, 36)
	assert.False(t, boot.StartedAt.IsZero())

	got, err := store.Get(ctx, boot.ID)
	require.NoError(t, err)
	assert.Equal(t, "host-a", got.Hostname)
	assert.Equal(t, 42, got.PID)
	assert.True(t, got.Running())

	stoppedAt := time.Now()
	require.NoError(t, store.RecordStop(ctx, boot.ID, stoppedAt))

	got, err = store.Get(ctx, boot.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StoppedAt)
	assert.False(t, got.Running())
	assert.WithinDuration(t, stoppedAt, *got.StoppedAt, time.Second)
}

func TestRecordStopUnknownBoot(t *testing.T) {
	store := createTestStore(t)
	assert.ErrorIs(t, store.RecordStop(context.Background(), "missing", time.Now()), ErrBootNotFound)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBootNotFound)
}

func TestRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordStart(ctx, &Boot{
			Hostname:  "host",
			PID:       i,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	boots, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, boots, 3)
	assert.Equal(t, []int{4, 3, 2}, []int{boots[0].PID, boots[1].PID, boots[2].PID})
}

func TestDatabaseConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	cfg := &DatabaseConfig{}
	cfg.ApplyDefaults()
	assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
	assert.Equal(t, filepath.Join("/tmp/xdg", "hatch", "journal.db"), cfg.SQLite.Path)
	assert.NoError(t, cfg.Validate())

	pg := &DatabaseConfig{Type: DatabaseTypePostgres}
	pg.ApplyDefaults()
	assert.Equal(t, 5432, pg.Postgres.Port)
	assert.Equal(t, "disable", pg.Postgres.SSLMode)
	assert.Error(t, pg.Validate(), "host, database and user are required")

	pg.Postgres.Host = "db"
	pg.Postgres.Database = "hatch"
	pg.Postgres.User = "hatch"
	assert.NoError(t, pg.Validate())
	assert.Equal(t, "host=db port=5432 user=hatch password= dbname=hatch sslmode=disable", pg.Postgres.DSN())
}
