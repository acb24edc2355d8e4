package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: hospitals and patients",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS hospitals (
					hospital_id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					city TEXT NOT NULL,
					country TEXT NOT NULL DEFAULT 'Turkey',
					specialties TEXT NOT NULL,
					commission_rate REAL NOT NULL DEFAULT 0.22,
					contact_whatsapp TEXT,
					avg_procedure_cost_usd REAL,
					rating REAL NOT NULL DEFAULT 4.5,
					languages TEXT NOT NULL,
					active INTEGER NOT NULL DEFAULT 1,
					seq INTEGER,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS patients (
					patient_id TEXT PRIMARY KEY,
					full_name TEXT NOT NULL,
					phone TEXT NOT NULL,
					language TEXT NOT NULL DEFAULT 'ru',
					procedure_interest TEXT NOT NULL,
					procedure_category TEXT,
					urgency TEXT DEFAULT 'routine',
					budget_usd REAL,
					notes TEXT,
					referral_source TEXT,
					arrival_date TEXT,
					status TEXT NOT NULL DEFAULT 'inquiry',
					matched_hospital_id TEXT REFERENCES hospitals(hospital_id),
					estimated_procedure_cost_usd REAL,
					commission_rate REAL,
					commission_usd REAL,
					tags TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_patients_status ON patients(status)`,
				`CREATE INDEX idx_patients_hospital ON patients(matched_hospital_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add travel requests",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS travel_requests (
					request_id TEXT PRIMARY KEY,
					full_name TEXT,
					phone TEXT,
					language TEXT DEFAULT 'en',
					room_type TEXT,
					check_in TEXT,
					nights INTEGER DEFAULT 3,
					guests INTEGER DEFAULT 2,
					status TEXT NOT NULL DEFAULT 'new',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Index hospitals for active-set scans",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_hospitals_active ON hospitals(active, seq)`)
			return err
		},
	},
}

// Migrate applies any outstanding schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
