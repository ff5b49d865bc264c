package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	d, err := New(path)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	// Reopening reruns migrate against an already-migrated database.
	d, err = New(path)
	require.NoError(t, err)
	defer d.Close()

	var version int
	err = d.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, 1)
}

func TestCredentialLifecycle(t *testing.T) {
	d := newTestDB(t)

	cred, err := d.Credential("modregistry")
	require.NoError(t, err)
	assert.Nil(t, cred)

	has, err := d.HasCredential("modregistry")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, d.SaveCredential("modregistry", "secret-key"))

	cred, err = d.Credential("modregistry")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "modregistry", cred.Name)
	assert.Equal(t, "secret-key", cred.APIKey)
	assert.False(t, cred.UpdatedAt.IsZero())

	has, err = d.HasCredential("modregistry")
	require.NoError(t, err)
	assert.True(t, has)

	// Saving again replaces, never duplicates.
	require.NoError(t, d.SaveCredential("modregistry", "rotated-key"))
	cred, err = d.Credential("modregistry")
	require.NoError(t, err)
	assert.Equal(t, "rotated-key", cred.APIKey)

	require.NoError(t, d.DeleteCredential("modregistry"))
	cred, err = d.Credential("modregistry")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestHistory(t *testing.T) {
	d := newTestDB(t)

	entries, err := d.History(10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, d.RecordHistory(HistoryEntry{
		Operation: OpInstall, Branch: "release", Version: 0, Detail: "version 7",
	}))
	require.NoError(t, d.RecordHistory(HistoryEntry{
		Operation: OpModInstall, Branch: "release", Version: 0, ModID: 42, FileID: 101,
	}))
	require.NoError(t, d.RecordHistory(HistoryEntry{
		Operation: OpLaunch, Branch: "release", Version: 0,
	}))

	entries, err = d.History(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, OpLaunch, entries[0].Operation)
	assert.Equal(t, OpModInstall, entries[1].Operation)
	assert.Equal(t, 42, entries[1].ModID)
	assert.Equal(t, 101, entries[1].FileID)
	assert.Equal(t, OpInstall, entries[2].Operation)
	assert.Equal(t, "version 7", entries[2].Detail)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestHistoryLimit(t *testing.T) {
	d := newTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.RecordHistory(HistoryEntry{Operation: OpLaunch, Branch: "release"}))
	}

	entries, err := d.History(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
