package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so that query methods can be
// shared between direct calls and transactional calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) GetActiveHospitals(ctx context.Context) ([]model.PartnerHospital, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getActiveHospitalsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetHospital(ctx context.Context, hospitalID string) (*model.PartnerHospital, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hospitalID, "hospitalID"); err != nil {
		return nil, err
	}
	return t.storage.getHospitalTx(ctx, t.tx, hospitalID)
}

func (t *sqliteTransaction) SaveHospital(ctx context.Context, hospital *model.PartnerHospital) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateHospital(hospital); err != nil {
		return err
	}
	return t.storage.saveHospitalTx(ctx, t.tx, hospital)
}

func (t *sqliteTransaction) InsertIntakeRecord(ctx context.Context, record *model.PatientIntakeRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIntakeRecord(record); err != nil {
		return err
	}
	return t.storage.insertIntakeRecordTx(ctx, t.tx, record)
}

func (t *sqliteTransaction) GetPatient(ctx context.Context, patientID string) (*model.PatientIntakeRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(patientID, "patientID"); err != nil {
		return nil, err
	}
	return t.storage.getPatientTx(ctx, t.tx, patientID)
}

func (t *sqliteTransaction) UpdatePatientStatus(ctx context.Context, patientID string, status model.IntakeStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(patientID, "patientID"); err != nil {
		return err
	}
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return t.storage.updatePatientStatusTx(ctx, t.tx, patientID, status)
}

func (t *sqliteTransaction) ListPatients(ctx context.Context, filter service.PatientFilter) ([]model.PatientIntakeRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listPatientsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetCommissionSummary(ctx context.Context) (*service.CommissionSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCommissionSummaryTx(ctx, t.tx)
}

func (t *sqliteTransaction) SaveTravelRequest(ctx context.Context, request *model.TravelRequest) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTravelRequest(request); err != nil {
		return err
	}
	return t.storage.saveTravelRequestTx(ctx, t.tx, request)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
