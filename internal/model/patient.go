package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// IntakeStatus tracks a patient record through the referral pipeline.
type IntakeStatus string

// Intake pipeline statuses.
const (
	StatusInquiry               IntakeStatus = "inquiry"
	StatusConsultationScheduled IntakeStatus = "consultation_scheduled"
	StatusDocsRequested         IntakeStatus = "docs_requested"
	StatusHospitalMatched       IntakeStatus = "hospital_matched"
	StatusTreatmentConfirmed    IntakeStatus = "treatment_confirmed"
	StatusCompleted             IntakeStatus = "completed"
	StatusCancelled             IntakeStatus = "cancelled"
)

// IsValid reports whether s is a known intake status.
func (s IntakeStatus) IsValid() bool {
	switch s {
	case StatusInquiry, StatusConsultationScheduled, StatusDocsRequested,
		StatusHospitalMatched, StatusTreatmentConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ConfirmedStatuses are the statuses whose commission counts as earned.
func ConfirmedStatuses() []IntakeStatus {
	return []IntakeStatus{StatusTreatmentConfirmed, StatusCompleted}
}

// PendingStatuses are the statuses whose commission is still pipeline.
func PendingStatuses() []IntakeStatus {
	return []IntakeStatus{StatusInquiry, StatusConsultationScheduled, StatusDocsRequested, StatusHospitalMatched}
}

// Intake validation errors.
var (
	ErrInvalidIntake = errors.New("invalid intake")
	ErrInvalidStatus = errors.New("invalid intake status")
)

// IntakeFields is the raw patient inquiry as submitted.
type IntakeFields struct {
	FullName          string
	Phone             string
	Language          string
	ProcedureInterest string
	Urgency           string
	Notes             string
	ReferralSource    string
	ArrivalDate       string  // ISO date, optional
	BudgetUSD         float64 // 0 means not stated
}

// Validate rejects malformed intakes before they reach the matching
// algorithm. Errors name the offending field; values are never silently
// coerced.
func (f *IntakeFields) Validate() error {
	if strings.TrimSpace(f.FullName) == "" {
		return fmt.Errorf("%w: full_name is required", ErrInvalidIntake)
	}
	if strings.TrimSpace(f.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidIntake)
	}
	if strings.TrimSpace(f.ProcedureInterest) == "" {
		return fmt.Errorf("%w: procedure_interest is required", ErrInvalidIntake)
	}
	if f.BudgetUSD < 0 {
		return fmt.Errorf("%w: budget_usd must not be negative", ErrInvalidIntake)
	}
	if math.IsNaN(f.BudgetUSD) || math.IsInf(f.BudgetUSD, 0) {
		return fmt.Errorf("%w: budget_usd is not a valid amount", ErrInvalidIntake)
	}
	if f.ArrivalDate != "" {
		if _, err := time.Parse("2006-01-02", f.ArrivalDate); err != nil {
			return fmt.Errorf("%w: arrival_date must be YYYY-MM-DD", ErrInvalidIntake)
		}
	}
	return nil
}

// PatientIntakeRecord is the business-critical artifact produced by the
// Medical handler. Commission fields are snapshots taken at creation time;
// they must never be recomputed from the hospital's current rate.
type PatientIntakeRecord struct {
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
	PatientID                 string
	ProcedureCategory         string
	MatchedHospitalID         string // empty when no hospital matched
	Status                    IntakeStatus
	Intake                    IntakeFields
	Tags                      []string
	EstimatedProcedureCostUSD float64
	CommissionRate            float64
	CommissionUSD             float64
}

// Validate checks the record's invariants, including the commission snapshot.
func (r *PatientIntakeRecord) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return fmt.Errorf("%w: missing patient ID", ErrInvalidIntake)
	}
	if err := r.Intake.Validate(); err != nil {
		return err
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	want := RoundUSD(r.EstimatedProcedureCostUSD * r.CommissionRate)
	if math.Abs(r.CommissionUSD-want) > 1e-9 {
		return fmt.Errorf("%w: commission %.2f does not equal cost × rate = %.2f",
			ErrInvalidIntake, r.CommissionUSD, want)
	}
	return nil
}

// RoundUSD rounds an amount to cents.
func RoundUSD(v float64) float64 {
	return math.Round(v*100) / 100
}

// IntakeResponse is returned to the caller after a successful intake.
type IntakeResponse struct {
	MatchedHospital           *PartnerHospital
	PatientID                 string
	ProcedureCategory         string
	CommissionRatePct         string
	CoordinatorMessage        string
	NextSteps                 []string
	EstimatedProcedureCostUSD float64
	CommissionUSD             float64
	Success                   bool
}

// AsMap renders the response for the dispatch envelope.
func (r *IntakeResponse) AsMap() map[string]any {
	var hospital any
	if r.MatchedHospital != nil {
		hospital = r.MatchedHospital.AsMap()
	}
	return map[string]any{
		"success":                      r.Success,
		"patient_id":                   r.PatientID,
		"procedure_category":           r.ProcedureCategory,
		"matched_hospital":             hospital,
		"estimated_procedure_cost_usd": r.EstimatedProcedureCostUSD,
		"commission_rate_pct":          r.CommissionRatePct,
		"commission_usd":               r.CommissionUSD,
		"next_steps":                   r.NextSteps,
		"coordinator_message":          r.CoordinatorMessage,
	}
}
