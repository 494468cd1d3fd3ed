package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err, "failed to open test catalog")
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func sampleNote(id string, syncedAt time.Time) *Note {
	return &Note{
		ID:        id,
		Title:     "Go Blog",
		URL:       "https://go.dev/blog",
		FilePath:  "/notes/20240320-Go Blog.org",
		Tags:      `["reading"]`,
		Content:   "* Go Blog\n",
		CreatedAt: "2024-03-20T12:00:00Z",
		SyncedAt:  syncedAt,
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	require.NoError(t, db.Upsert(sampleNote("b1", now)))

	got, err := db.Get("b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Go Blog", got.Title)
	assert.Equal(t, `["reading"]`, got.Tags)

	// Upsert with the same id updates in place.
	updated := sampleNote("b1", now.Add(time.Minute))
	updated.Title = "Go Blog (updated)"
	require.NoError(t, db.Upsert(updated))

	got, err = db.Get("b1")
	require.NoError(t, err)
	assert.Equal(t, "Go Blog (updated)", got.Title)

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListOrdersByMostRecentSync(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now()
	require.NoError(t, db.Upsert(sampleNote("older", base.Add(-time.Hour))))
	require.NoError(t, db.Upsert(sampleNote("newer", base)))

	ns, err := db.List()
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, "newer", ns[0].ID)
	assert.Equal(t, "older", ns[1].ID)
}

func TestLastSyncedAt(t *testing.T) {
	db := setupTestDB(t)

	ts, err := db.LastSyncedAt()
	require.NoError(t, err)
	assert.True(t, ts.IsZero(), "empty catalog has no last sync")

	now := time.Now().Truncate(time.Second)
	require.NoError(t, db.Upsert(sampleNote("b1", now)))

	ts, err = db.LastSyncedAt()
	require.NoError(t, err)
	assert.WithinDuration(t, now, ts, time.Second)
}
