package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

const hospitalColumns = `hospital_id, name, city, country, specialties, commission_rate,
	contact_whatsapp, avg_procedure_cost_usd, rating, languages, active`

// GetActiveHospitals returns all active partner hospitals in insertion order.
// Insertion order is the tie-break order for hospital matching, so it must be
// stable across reads.
func (s *SQLiteStorage) GetActiveHospitals(ctx context.Context) ([]model.PartnerHospital, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getActiveHospitalsTx(ctx, s.db)
}

func (s *SQLiteStorage) getActiveHospitalsTx(ctx context.Context, db dbtx) ([]model.PartnerHospital, error) {
	query := fmt.Sprintf(`SELECT %s FROM hospitals WHERE active = 1 ORDER BY seq, hospital_id`, hospitalColumns)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hospitals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hospitals []model.PartnerHospital
	for rows.Next() {
		hospital, scanErr := scanHospital(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		hospitals = append(hospitals, *hospital)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hospitals: %w", err)
	}
	return hospitals, nil
}

// GetHospital returns a single hospital by ID, active or not.
func (s *SQLiteStorage) GetHospital(ctx context.Context, hospitalID string) (*model.PartnerHospital, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hospitalID, "hospitalID"); err != nil {
		return nil, err
	}
	return s.getHospitalTx(ctx, s.db, hospitalID)
}

func (s *SQLiteStorage) getHospitalTx(ctx context.Context, db dbtx, hospitalID string) (*model.PartnerHospital, error) {
	query := fmt.Sprintf(`SELECT %s FROM hospitals WHERE hospital_id = ?`, hospitalColumns)

	hospital, err := scanHospital(db.QueryRowContext(ctx, query, hospitalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: hospital %s", ErrNotFound, hospitalID)
	}
	if err != nil {
		return nil, err
	}
	return hospital, nil
}

// SaveHospital inserts or updates a partner hospital. The insertion sequence
// is preserved on update so matching tie-breaks stay stable.
func (s *SQLiteStorage) SaveHospital(ctx context.Context, hospital *model.PartnerHospital) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateHospital(hospital); err != nil {
		return err
	}
	return s.saveHospitalTx(ctx, s.db, hospital)
}

func (s *SQLiteStorage) saveHospitalTx(ctx context.Context, db dbtx, hospital *model.PartnerHospital) error {
	specialties, err := json.Marshal(hospital.Specialties)
	if err != nil {
		return fmt.Errorf("failed to marshal specialties: %w", err)
	}
	languages, err := json.Marshal(hospital.Languages)
	if err != nil {
		return fmt.Errorf("failed to marshal languages: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO hospitals (hospital_id, name, city, country, specialties, commission_rate,
			contact_whatsapp, avg_procedure_cost_usd, rating, languages, active, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE((SELECT MAX(h.seq) FROM hospitals h), 0) + 1)
		ON CONFLICT(hospital_id) DO UPDATE SET
			name = excluded.name,
			city = excluded.city,
			country = excluded.country,
			specialties = excluded.specialties,
			commission_rate = excluded.commission_rate,
			contact_whatsapp = excluded.contact_whatsapp,
			avg_procedure_cost_usd = excluded.avg_procedure_cost_usd,
			rating = excluded.rating,
			languages = excluded.languages,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP
	`, hospital.HospitalID, hospital.Name, hospital.City, hospital.Country,
		string(specialties), hospital.CommissionRate, hospital.ContactWhatsApp,
		hospital.AvgProcedureCostUSD, hospital.Rating, string(languages), hospital.Active)
	if err != nil {
		return fmt.Errorf("failed to save hospital: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanHospital(row scanner) (*model.PartnerHospital, error) {
	var (
		hospital    model.PartnerHospital
		specialties string
		languages   string
		whatsapp    sql.NullString
		avgCost     sql.NullFloat64
	)

	err := row.Scan(&hospital.HospitalID, &hospital.Name, &hospital.City, &hospital.Country,
		&specialties, &hospital.CommissionRate, &whatsapp, &avgCost,
		&hospital.Rating, &languages, &hospital.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan hospital: %w", err)
	}

	if err := json.Unmarshal([]byte(specialties), &hospital.Specialties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal specialties: %w", err)
	}
	if err := json.Unmarshal([]byte(languages), &hospital.Languages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal languages: %w", err)
	}
	hospital.ContactWhatsApp = whatsapp.String
	hospital.AvgProcedureCostUSD = avgCost.Float64

	return &hospital, nil
}
