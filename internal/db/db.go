package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// DefaultPath returns the database path next to the working directory,
// falling back to the executable directory for deployed builds.
func DefaultPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "starfoundry.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "starfoundry.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS projects (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL UNIQUE,
				config_json TEXT NOT NULL,
				created_at  TEXT NOT NULL,
				updated_at  TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS appraisals (
				id            TEXT PRIMARY KEY,
				project_id    TEXT NOT NULL REFERENCES projects(id),
				created_at    TEXT NOT NULL,
				material_cost REAL NOT NULL,
				job_cost      REAL NOT NULL,
				total_cost    REAL NOT NULL,
				incomplete    INTEGER NOT NULL DEFAULT 0,
				result_json   TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_appraisals_project ON appraisals(project_id);
			CREATE INDEX IF NOT EXISTS idx_appraisals_created ON appraisals(created_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}
