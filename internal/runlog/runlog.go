// Package runlog persists a one-row-per-run scoreboard to SQLite so
// successive tuning runs can be compared: sql.Open with a pragma DSN, a
// schema_version-gated migrate, and an ordered SELECT query. The
// simulation itself keeps no persisted state; this is optional tooling
// around it.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"fleetsim/internal/logger"
)

// DB wraps a SQLite connection holding the run_history table.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("runlog: ping %s: %w", path, err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("runlog: migrate %s: %w", path, err)
	}
	logger.Success("RUNLOG", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS run_history (
				id                     INTEGER PRIMARY KEY AUTOINCREMENT,
				recorded_at            TEXT NOT NULL,
				seed                   INTEGER NOT NULL,
				ticks                  INTEGER NOT NULL,
				vehicle_count          INTEGER NOT NULL,
				amount_delivered_score REAL NOT NULL,
				in_time_score          REAL NOT NULL,
				travel_distance_score  REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_run_history_recorded_at ON run_history(recorded_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("RUNLOG", "Applied migration v1")
	}
	return nil
}

// Summary is one completed run's scoreboard.
type Summary struct {
	Seed                 int64
	Ticks                int
	VehicleCount         int
	AmountDeliveredScore float64
	InTimeScore          float64
	TravelDistanceScore  float64
}

// Record inserts s as a new run_history row, stamped with the current
// time.
func (d *DB) Record(s Summary) error {
	_, err := d.sql.Exec(`
		INSERT INTO run_history
		(recorded_at, seed, ticks, vehicle_count, amount_delivered_score, in_time_score, travel_distance_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, time.Now().Format(time.RFC3339), s.Seed, s.Ticks, s.VehicleCount,
		s.AmountDeliveredScore, s.InTimeScore, s.TravelDistanceScore)
	if err != nil {
		return fmt.Errorf("runlog: record: %w", err)
	}
	return nil
}

// Recent returns up to limit of the most recently recorded runs, newest
// first.
func (d *DB) Recent(limit int) ([]Summary, error) {
	rows, err := d.sql.Query(`
		SELECT seed, ticks, vehicle_count, amount_delivered_score, in_time_score, travel_distance_score
		FROM run_history
		ORDER BY recorded_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: recent: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Seed, &s.Ticks, &s.VehicleCount,
			&s.AmountDeliveredScore, &s.InTimeScore, &s.TravelDistanceScore); err != nil {
			return nil, fmt.Errorf("runlog: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
