package migrations

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestRunMigrationsCreatesNotesTable(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	count, err := runner.RunMigrations()
	require.NoError(t, err)
	assert.Equal(t, len(getAllMigrations()), count)
	assert.True(t, tableExists(t, db, "notes"))
	assert.True(t, tableExists(t, db, "schema_migrations"))

	// Second run is a no-op
	count, err = runner.RunMigrations()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrationStatus(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	status, err := runner.GetMigrationStatus()
	require.NoError(t, err)
	for _, s := range status {
		assert.False(t, s.Applied, s.ID)
	}

	_, err = runner.RunMigrations()
	require.NoError(t, err)

	status, err = runner.GetMigrationStatus()
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, "000_create_notes", status[0].ID)
	for _, s := range status {
		assert.True(t, s.Applied, s.ID)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")
	runner := newRunner(db, []Migration{
		{
			ID:          "000_partial",
			Description: "creates a table then fails",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec("CREATE TABLE partial (id INTEGER)"); err != nil {
					return err
				}
				return boom
			},
		},
	})

	count, err := runner.RunMigrations()
	require.ErrorIs(t, err, boom)
	assert.Zero(t, count)
	assert.False(t, tableExists(t, db, "partial"))

	status, err := runner.GetMigrationStatus()
	require.NoError(t, err)
	assert.False(t, status[0].Applied)
}

func TestRollbackMigration(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	_, err := runner.RunMigrations()
	require.NoError(t, err)

	require.NoError(t, runner.RollbackMigration("001_index_notes_created_at"))
	status, err := runner.GetMigrationStatus()
	require.NoError(t, err)
	assert.False(t, status[1].Applied)

	assert.Error(t, runner.RollbackMigration("001_index_notes_created_at"))
	assert.Error(t, runner.RollbackMigration("999_missing"))
}
