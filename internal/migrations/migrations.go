package migrations

import (
	"database/sql"
	"fmt"
)

// getAllMigrations returns all available migrations in order
func getAllMigrations() []Migration {
	return []Migration{
		{
			ID:          "000_create_notes",
			Description: "Create notes table with JSON embedding column",
			Up:          migration000Up,
			Down:        migration000Down,
		},
		{
			ID:          "001_index_notes_created_at",
			Description: "Index notes by creation time for newest-first listing",
			Up:          migration001Up,
			Down:        migration001Down,
		},
		// Add new migrations here in chronological order
	}
}

// AUTOINCREMENT keeps deleted ids from being handed out again.
func migration000Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			note TEXT NOT NULL,
			embedding TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create notes table: %w", err)
	}
	return nil
}

func migration000Down(tx *sql.Tx) error {
	if _, err := tx.Exec("DROP TABLE IF EXISTS notes"); err != nil {
		return fmt.Errorf("failed to drop notes table: %w", err)
	}
	return nil
}

func migration001Up(tx *sql.Tx) error {
	_, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC, id DESC)")
	if err != nil {
		return fmt.Errorf("failed to create notes created_at index: %w", err)
	}
	return nil
}

func migration001Down(tx *sql.Tx) error {
	if _, err := tx.Exec("DROP INDEX IF EXISTS idx_notes_created_at"); err != nil {
		return fmt.Errorf("failed to drop notes created_at index: %w", err)
	}
	return nil
}
