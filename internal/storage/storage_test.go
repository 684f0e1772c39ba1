package storage_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/storage"
)

func sampleStore() model.Store {
	return model.Store{
		"2026-02-27": {
			StartTime: "08:00",
			Events: []model.Event{
				{ID: 1772179200000, Important: true, Description: "design review", Time: "09:00"},
				{ID: 1772179200001, Description: "emails", Time: "10:00"},
				{ID: 1772179200002, Description: "", Time: ""},
			},
		},
		"2026-02-28": {StartTime: "09:30", Events: []model.Event{}},
	}
}

func TestFileGatewayLoadMissing(t *testing.T) {
	gw := storage.NewFileGateway(t.TempDir())
	store, err := gw.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Empty(t, store)
}

func TestFileGatewaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	gw := storage.NewFileGateway(dir)
	ctx := context.Background()

	require.NoError(t, gw.Save(ctx, sampleStore()))

	loaded, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleStore(), loaded)

	_, err = os.Stat(filepath.Join(dir, storage.RecordsFile+".tmp"))
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileGatewayWritesPersistedShape(t *testing.T) {
	dir := t.TempDir()
	gw := storage.NewFileGateway(dir)
	store := model.Store{"2026-02-28": model.NewDayRecord()}
	require.NoError(t, gw.Save(context.Background(), store))

	data, err := os.ReadFile(filepath.Join(dir, storage.RecordsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"2026-02-28":{"startTime":"08:00","events":[]}}`, string(data))
	assert.Contains(t, string(data), "\n  \"2026-02-28\"", "pretty printed with two spaces")
}

func TestFileGatewayCorruptBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, storage.RecordsFile)
	require.NoError(t, os.WriteFile(path, []byte("{bad json"), 0o600))

	_, err := storage.NewFileGateway(dir).Load(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr, "expected backup file to exist after corrupt JSON")
}

func TestSQLiteGatewayRoundTrip(t *testing.T) {
	gw, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	ctx := context.Background()

	empty, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, gw.Save(ctx, sampleStore()))
	loaded, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleStore(), loaded)

	// A later save replaces rows rather than merging them.
	smaller := model.Store{"2026-03-01": model.NewDayRecord()}
	require.NoError(t, gw.Save(ctx, smaller))
	loaded, err = gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller, loaded)
}

func schemaVersion(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	var v int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&v))
	return v
}

func TestSchemaUpgradeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DatabaseFile)
	gw, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	assert.Equal(t, 1, schemaVersion(t, path))

	gw, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	assert.Equal(t, 1, schemaVersion(t, path))
}

func TestOpenSQLiteRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DatabaseFile)
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = storage.OpenSQLite(path)
	assert.ErrorContains(t, err, "newer than this build")
}

func TestResolveBackend(t *testing.T) {
	dir := t.TempDir()

	got, err := storage.ResolveBackend("auto", dir)
	require.NoError(t, err)
	assert.Equal(t, storage.BackendFile, got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.DatabaseFile), nil, 0o600))
	got, err = storage.ResolveBackend("", dir)
	require.NoError(t, err)
	assert.Equal(t, storage.BackendSQLite, got)

	got, err = storage.ResolveBackend("file", dir)
	require.NoError(t, err)
	assert.Equal(t, storage.BackendFile, got)

	_, err = storage.ResolveBackend("redis", dir)
	assert.Error(t, err)
}

func TestOpenSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	gw, closer, err := storage.Open(storage.BackendSQLite, dir)
	require.NoError(t, err)
	defer closer.Close()

	_, ok := gw.(*storage.SQLiteGateway)
	assert.True(t, ok)
	_, err = os.Stat(filepath.Join(dir, storage.DatabaseFile))
	assert.NoError(t, err)
}
