package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

const patientColumns = `patient_id, full_name, phone, language, procedure_interest,
	procedure_category, urgency, budget_usd, notes, referral_source, arrival_date,
	status, matched_hospital_id, estimated_procedure_cost_usd, commission_rate,
	commission_usd, tags, created_at, updated_at`

// InsertIntakeRecord persists a new patient intake. Inserts are append-only;
// a duplicate patient ID is an error, never an overwrite.
func (s *SQLiteStorage) InsertIntakeRecord(ctx context.Context, record *model.PatientIntakeRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIntakeRecord(record); err != nil {
		return err
	}
	return s.insertIntakeRecordTx(ctx, s.db, record)
}

func (s *SQLiteStorage) insertIntakeRecordTx(ctx context.Context, db dbtx, record *model.PatientIntakeRecord) error {
	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO patients (patient_id, full_name, phone, language, procedure_interest,
			procedure_category, urgency, budget_usd, notes, referral_source, arrival_date,
			status, matched_hospital_id, estimated_procedure_cost_usd, commission_rate,
			commission_usd, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.PatientID, record.Intake.FullName, record.Intake.Phone, record.Intake.Language,
		record.Intake.ProcedureInterest, record.ProcedureCategory, record.Intake.Urgency,
		record.Intake.BudgetUSD, record.Intake.Notes, record.Intake.ReferralSource,
		nullString(record.Intake.ArrivalDate), string(record.Status),
		nullString(record.MatchedHospitalID), record.EstimatedProcedureCostUSD,
		record.CommissionRate, record.CommissionUSD, string(tags), createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert intake record: %w", err)
	}
	return nil
}

// GetPatient returns a patient intake record by ID.
func (s *SQLiteStorage) GetPatient(ctx context.Context, patientID string) (*model.PatientIntakeRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(patientID, "patientID"); err != nil {
		return nil, err
	}
	return s.getPatientTx(ctx, s.db, patientID)
}

func (s *SQLiteStorage) getPatientTx(ctx context.Context, db dbtx, patientID string) (*model.PatientIntakeRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE patient_id = ?`, patientColumns)

	record, err := scanPatient(db.QueryRowContext(ctx, query, patientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: patient %s", ErrNotFound, patientID)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UpdatePatientStatus moves a patient through the referral pipeline. Only the
// status changes; commission snapshots are immutable after insert.
func (s *SQLiteStorage) UpdatePatientStatus(ctx context.Context, patientID string, status model.IntakeStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(patientID, "patientID"); err != nil {
		return err
	}
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return s.updatePatientStatusTx(ctx, s.db, patientID, status)
}

func (s *SQLiteStorage) updatePatientStatusTx(ctx context.Context, db dbtx, patientID string, status model.IntakeStatus) error {
	result, err := db.ExecContext(ctx, `
		UPDATE patients SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE patient_id = ?
	`, string(status), patientID)
	if err != nil {
		return fmt.Errorf("failed to update patient status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: patient %s", ErrNotFound, patientID)
	}
	return nil
}

// ListPatients returns intake records matching the filter, newest first.
func (s *SQLiteStorage) ListPatients(ctx context.Context, filter service.PatientFilter) ([]model.PatientIntakeRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listPatientsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listPatientsTx(ctx context.Context, db dbtx, filter service.PatientFilter) ([]model.PatientIntakeRecord, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != nil {
		if !filter.Status.IsValid() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, *filter.Status)
		}
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := fmt.Sprintf(`SELECT %s FROM patients`, patientColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, patient_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.PatientIntakeRecord
	for rows.Next() {
		record, scanErr := scanPatient(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}
	return records, nil
}

// GetCommissionSummary aggregates commission over the referral pipeline.
// Confirmed commission covers treatment_confirmed and completed patients;
// pending covers everything still moving through the pipeline. Cancelled
// records count toward the total but neither bucket.
func (s *SQLiteStorage) GetCommissionSummary(ctx context.Context) (*service.CommissionSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCommissionSummaryTx(ctx, s.db)
}

func (s *SQLiteStorage) getCommissionSummaryTx(ctx context.Context, db dbtx) (*service.CommissionSummary, error) {
	confirmed := statusPlaceholders(model.ConfirmedStatuses())
	pending := statusPlaceholders(model.PendingStatuses())

	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status IN (%s) THEN commission_usd ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status IN (%s) THEN commission_usd ELSE 0 END), 0)
		FROM patients
	`, confirmed, pending)

	var args []any
	for _, st := range model.ConfirmedStatuses() {
		args = append(args, string(st))
	}
	for _, st := range model.PendingStatuses() {
		args = append(args, string(st))
	}

	summary := &service.CommissionSummary{}
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&summary.TotalPatients,
		&summary.ConfirmedCommissionUSD,
		&summary.PendingCommissionUSD,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute commission summary: %w", err)
	}
	summary.ConfirmedCommissionUSD = model.RoundUSD(summary.ConfirmedCommissionUSD)
	summary.PendingCommissionUSD = model.RoundUSD(summary.PendingCommissionUSD)
	summary.TotalPipelineUSD = model.RoundUSD(summary.ConfirmedCommissionUSD + summary.PendingCommissionUSD)
	return summary, nil
}

func statusPlaceholders(statuses []model.IntakeStatus) string {
	return strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
}

func scanPatient(row scanner) (*model.PatientIntakeRecord, error) {
	var (
		record      model.PatientIntakeRecord
		category    sql.NullString
		urgency     sql.NullString
		budget      sql.NullFloat64
		notes       sql.NullString
		referral    sql.NullString
		arrival     sql.NullString
		hospitalID  sql.NullString
		cost        sql.NullFloat64
		rate        sql.NullFloat64
		commission  sql.NullFloat64
		tags        sql.NullString
		status      string
	)

	err := row.Scan(&record.PatientID, &record.Intake.FullName, &record.Intake.Phone,
		&record.Intake.Language, &record.Intake.ProcedureInterest, &category, &urgency,
		&budget, &notes, &referral, &arrival, &status, &hospitalID, &cost, &rate,
		&commission, &tags, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}

	record.ProcedureCategory = category.String
	record.Intake.Urgency = urgency.String
	record.Intake.BudgetUSD = budget.Float64
	record.Intake.Notes = notes.String
	record.Intake.ReferralSource = referral.String
	record.Intake.ArrivalDate = arrival.String
	record.Status = model.IntakeStatus(status)
	record.MatchedHospitalID = hospitalID.String
	record.EstimatedProcedureCostUSD = cost.Float64
	record.CommissionRate = rate.Float64
	record.CommissionUSD = commission.Float64

	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &record.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
