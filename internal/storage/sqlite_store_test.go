package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupSQLite creates a temporary store seeded with two students
func setupSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "nested", "students.db"), "Database")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "Database", Row{"UID": "STU1", "Name": "Ada Lovelace", "Number": "42", "Language": "English"}))
	require.NoError(t, store.Upsert(ctx, "Database", Row{"UID": "STU2", "Name": "Alan Turing", "Number": "7"}))
	return store
}

func TestSQLiteStore_Select(t *testing.T) {
	store := setupSQLite(t)

	rows, err := store.Select(context.Background(), "Database", "UID", "STU1")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ada Lovelace", rows[0]["Name"])
	assert.Equal(t, "42", rows[0]["Number"])
	assert.Equal(t, "English", rows[0]["Language"])
}

func TestSQLiteStore_SelectMissing(t *testing.T) {
	store := setupSQLite(t)

	rows, err := store.Select(context.Background(), "Database", "UID", "NOPE")

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteStore_SelectNullColumn(t *testing.T) {
	store := setupSQLite(t)

	rows, err := store.Select(context.Background(), "Database", "UID", "STU2")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["Language"])
}

func TestSQLiteStore_Update(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	rows, err := store.Update(ctx, "Database", "UID", "STU2", Row{"Language": "HI"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HI", rows[0]["Language"])

	rows, err = store.Select(ctx, "Database", "UID", "STU2")
	require.NoError(t, err)
	assert.Equal(t, "HI", rows[0]["Language"])
}

func TestSQLiteStore_UpdateNoMatch(t *testing.T) {
	store := setupSQLite(t)

	rows, err := store.Update(context.Background(), "Database", "UID", "GHOST", Row{"Language": "FR"})

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteStore_RejectsEmptyWrites(t *testing.T) {
	store := setupSQLite(t)

	_, err := store.Update(context.Background(), "Database", "UID", "STU1", Row{})
	assert.Error(t, err)
	assert.Error(t, store.Upsert(context.Background(), "Database", Row{}))
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := OpenSQLiteStore(":memory:", "Students")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Upsert(context.Background(), "Students", Row{"UID": "A", "Name": "Grace Hopper"}))
	rows, err := store.Select(context.Background(), "Students", "UID", "A")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"Database"`, quoteIdent("Database"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
