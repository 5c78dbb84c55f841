package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/constants"
	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/migrations"
)

// DB is the process-wide store handle: opened once at startup, closed on
// shutdown.
type DB struct {
	conn *sql.DB
	path string
}

func New(cfg *config.Config) (*DB, error) {
	path := cfg.GetDatabasePath()

	// Ensure database directory exists
	if err := os.MkdirAll(filepath.Dir(path), constants.DataDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	logger.Debug("Database path: %s", path)

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

func (db *DB) initialize() error {
	if err := db.conn.Ping(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	var version string
	if err := db.conn.QueryRow("SELECT sqlite_version()").Scan(&version); err == nil {
		logger.Debug("SQLite version %s", version)
	}

	if _, err := migrations.NewMigrationRunner(db.conn).RunMigrations(); err != nil {
		return err
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Path() string {
	return db.path
}
