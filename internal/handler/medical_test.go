package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity-ventures/thaiturk/internal/engine"
	"github.com/antigravity-ventures/thaiturk/internal/lexicon"
	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/seed"
	"github.com/antigravity-ventures/thaiturk/internal/service"
	"github.com/antigravity-ventures/thaiturk/internal/storage"
)

func newTestMedical(t *testing.T) (*Medical, service.Storage) {
	t.Helper()

	store := storage.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, seed.Hospitals(ctx, store, seed.Options{}))

	lex, err := lexicon.Default()
	require.NoError(t, err)

	return NewMedical(store, lex), store
}

func TestMedical_ProcessIntake(t *testing.T) {
	medical, store := newTestMedical(t)
	ctx := context.Background()

	resp, err := medical.ProcessIntake(ctx, model.IntakeFields{
		FullName:          "Ivan Petrov",
		Phone:             "+7-900-000-0000",
		Language:          "ru",
		ProcedureInterest: "saç ekimi yaptırmak istiyorum",
		Urgency:           "routine",
		BudgetUSD:         5000,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.PatientID, "MED-"), "patient ID %s", resp.PatientID)
	assert.Equal(t, "hair", resp.ProcedureCategory)

	// Budget 5000 exceeds the 20% ceiling over the 3000 base price.
	assert.InDelta(t, 3600, resp.EstimatedProcedureCostUSD, 1e-9)

	// HairCure is the only hair-specialty partner.
	require.NotNil(t, resp.MatchedHospital)
	assert.Equal(t, "HAIR-IST-005", resp.MatchedHospital.HospitalID)
	assert.InDelta(t, 900, resp.CommissionUSD, 1e-9) // 3600 × 0.25
	assert.Equal(t, "25%", resp.CommissionRatePct)

	assert.Contains(t, resp.CoordinatorMessage, resp.PatientID)
	assert.Contains(t, resp.CoordinatorMessage, "HairCure Clinic")
	assert.NotEmpty(t, resp.NextSteps)

	// The record is durable and carries the snapshot.
	record, err := store.GetPatient(ctx, resp.PatientID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInquiry, record.Status)
	assert.Equal(t, "hair", record.ProcedureCategory)
	assert.InDelta(t, 900, record.CommissionUSD, 1e-9)
	assert.Contains(t, record.Tags, "hair")
	assert.Contains(t, record.Tags, "ru")
}

func TestMedical_ProcessIntakeUnknownProcedure(t *testing.T) {
	medical, _ := newTestMedical(t)
	ctx := context.Background()

	resp, err := medical.ProcessIntake(ctx, model.IntakeFields{
		FullName:          "Jane Doe",
		Phone:             "+1-555-0000",
		Language:          "en",
		ProcedureInterest: "something entirely novel xyz",
	})
	require.NoError(t, err)

	// Unmatched interests triage to "other" at the fallback price, and a
	// hospital is still recommended from the full active roster.
	assert.Equal(t, "other", resp.ProcedureCategory)
	assert.InDelta(t, 3000, resp.EstimatedProcedureCostUSD, 1e-9)
	require.NotNil(t, resp.MatchedHospital)
	assert.Equal(t, "ACI-IST-002", resp.MatchedHospital.HospitalID)
}

func TestMedical_ProcessIntakeValidation(t *testing.T) {
	medical, store := newTestMedical(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		intake model.IntakeFields
	}{
		{
			name:   "missing name",
			intake: model.IntakeFields{Phone: "+1", ProcedureInterest: "dental"},
		},
		{
			name:   "missing phone",
			intake: model.IntakeFields{FullName: "X", ProcedureInterest: "dental"},
		},
		{
			name:   "missing procedure",
			intake: model.IntakeFields{FullName: "X", Phone: "+1"},
		},
		{
			name: "negative budget",
			intake: model.IntakeFields{
				FullName: "X", Phone: "+1", ProcedureInterest: "dental", BudgetUSD: -10,
			},
		},
		{
			name: "malformed arrival date",
			intake: model.IntakeFields{
				FullName: "X", Phone: "+1", ProcedureInterest: "dental", ArrivalDate: "tomorrow",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := medical.ProcessIntake(ctx, tt.intake)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidIntake)
		})
	}

	// Nothing was persisted for any rejected intake.
	patients, err := store.ListPatients(ctx, service.PatientFilter{})
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestMedical_CommissionSnapshotImmutable(t *testing.T) {
	medical, store := newTestMedical(t)
	ctx := context.Background()

	resp, err := medical.ProcessIntake(ctx, model.IntakeFields{
		FullName:          "Ayşe Yılmaz",
		Phone:             "+90-555-000-0000",
		Language:          "tr",
		ProcedureInterest: "diş kaplama",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.MatchedHospital)

	// The hospital renegotiates its rate after the intake.
	hospital, err := store.GetHospital(ctx, resp.MatchedHospital.HospitalID)
	require.NoError(t, err)
	hospital.CommissionRate = 0.10
	require.NoError(t, store.SaveHospital(ctx, hospital))

	// The stored commission still reflects the rate at intake time.
	record, err := store.GetPatient(ctx, resp.PatientID)
	require.NoError(t, err)
	assert.InDelta(t, resp.CommissionUSD, record.CommissionUSD, 1e-9)
	assert.InDelta(t, model.RoundUSD(record.EstimatedProcedureCostUSD*record.CommissionRate),
		record.CommissionUSD, 1e-9)
}

func TestMedical_EstimateCost(t *testing.T) {
	medical, _ := newTestMedical(t)

	tests := []struct {
		name     string
		category string
		budget   float64
		want     float64
	}{
		{name: "no budget uses base price", category: "hair", budget: 0, want: 3000},
		{name: "budget below ceiling honored", category: "hair", budget: 2500, want: 2500},
		{name: "budget above ceiling capped", category: "hair", budget: 5000, want: 3600},
		{name: "budget exactly at ceiling", category: "hair", budget: 3600, want: 3600},
		{name: "unknown category fallback", category: "mystery", budget: 0, want: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, medical.estimateCost(tt.category, tt.budget), 1e-9)
		})
	}
}

func TestMedical_MatchHospitalLanguageBonus(t *testing.T) {
	medical, store := newTestMedical(t)
	ctx := context.Background()

	// Arabic: Memorial (4.8−0.22+0.5=5.08) overtakes Acıbadem (4.9−0.20=4.70),
	// which has the higher rating but no Arabic coordinators.
	hospital, err := medical.matchHospital(ctx, store, "checkup", "ar")
	require.NoError(t, err)
	require.NotNil(t, hospital)
	assert.Equal(t, "MEM-IST-001", hospital.HospitalID)

	// German flips it back to Acıbadem (4.9−0.20+0.5=5.20).
	hospital, err = medical.matchHospital(ctx, store, "checkup", "de")
	require.NoError(t, err)
	require.NotNil(t, hospital)
	assert.Equal(t, "ACI-IST-002", hospital.HospitalID)
}

func TestMedical_MatchHospitalEmptyRoster(t *testing.T) {
	store := storage.NewMemoryStorage()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	medical := NewMedical(store, lex)

	hospital, err := medical.matchHospital(context.Background(), store, "hair", "en")
	require.NoError(t, err)
	assert.Nil(t, hospital)
}

func TestMedical_HandlePreliminaryQuote(t *testing.T) {
	medical, store := newTestMedical(t)
	ctx := context.Background()

	resp, err := medical.Handle(ctx, engine.Request{
		Message:  "I want a hair transplant",
		Language: "en",
	})
	require.NoError(t, err)

	assert.Equal(t, "preliminary_quote", resp["action"])
	assert.Equal(t, "hair", resp["procedure_category"])

	// No contact details, no record.
	patients, err := store.ListPatients(ctx, service.PatientFilter{})
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestMedical_HandleFullIntake(t *testing.T) {
	medical, store := newTestMedical(t)
	ctx := context.Background()

	resp, err := medical.Handle(ctx, engine.Request{
		Message:  "I want a hair transplant",
		Language: "en",
		Metadata: map[string]any{
			"full_name":  "John Smith",
			"phone":      "+44-7700-900000",
			"budget_usd": 2500.0,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, true, resp["success"])
	patientID, _ := resp["patient_id"].(string)
	require.NotEmpty(t, patientID)

	record, err := store.GetPatient(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", record.Intake.FullName)
	assert.InDelta(t, 2500, record.EstimatedProcedureCostUSD, 1e-9)
}

func TestMedical_HandleFlagSourcedBudget(t *testing.T) {
	medical, store := newTestMedical(t)
	ctx := context.Background()

	// --meta flags deliver every value as a string; a stated budget must
	// still reach the estimator instead of degrading to "not stated".
	resp, err := medical.Handle(ctx, engine.Request{
		Message:  "I want a hair transplant",
		Language: "en",
		Metadata: map[string]any{
			"full_name":  "John Smith",
			"phone":      "+44-7700-900000",
			"budget_usd": "5000",
		},
	})
	require.NoError(t, err)

	patientID, _ := resp["patient_id"].(string)
	require.NotEmpty(t, patientID)

	record, err := store.GetPatient(ctx, patientID)
	require.NoError(t, err)
	assert.InDelta(t, 5000, record.Intake.BudgetUSD, 1e-9)
	// Budget 5000 exceeds the 20% ceiling over the 3000 base price.
	assert.InDelta(t, 3600, record.EstimatedProcedureCostUSD, 1e-9)
}

func TestMedical_StatusAndSummary(t *testing.T) {
	medical, _ := newTestMedical(t)
	ctx := context.Background()

	first, err := medical.ProcessIntake(ctx, model.IntakeFields{
		FullName: "A", Phone: "+1", Language: "en", ProcedureInterest: "hair transplant",
	})
	require.NoError(t, err)
	second, err := medical.ProcessIntake(ctx, model.IntakeFields{
		FullName: "B", Phone: "+2", Language: "en", ProcedureInterest: "dental veneers",
	})
	require.NoError(t, err)

	require.NoError(t, medical.UpdateStatus(ctx, first.PatientID, model.StatusTreatmentConfirmed))

	summary, err := medical.CommissionSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalPatients)
	assert.InDelta(t, first.CommissionUSD, summary.ConfirmedCommissionUSD, 1e-9)
	assert.InDelta(t, second.CommissionUSD, summary.PendingCommissionUSD, 1e-9)
	assert.InDelta(t, first.CommissionUSD+second.CommissionUSD, summary.TotalPipelineUSD, 1e-9)

	// Unknown statuses are rejected outright.
	err = medical.UpdateStatus(ctx, first.PatientID, model.IntakeStatus("vanished"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestClassifyProcedure(t *testing.T) {
	medical, _ := newTestMedical(t)

	tests := []struct {
		text string
		want string
	}{
		{"I need a hair transplant", "hair"},
		{"rhinoplasty consultation", "aesthetic"},
		{"Пересадка волос", "hair"},
		{"зубы болят, нужны виниры", "dental"},
		{"saç ekimi", "hair"},
		{"full body checkup", "checkup"},
		{"gastric sleeve for obesity", "bariatric"},
		{"no recognizable procedure here", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, medical.classifyProcedure(tt.text))
		})
	}
}

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name     string
		intake   model.IntakeFields
		category string
		want     []string
	}{
		{
			name:     "routine intake",
			intake:   model.IntakeFields{Urgency: "routine", Language: "en"},
			category: "hair",
			want:     []string{"hair", "routine", "en"},
		},
		{
			name:     "high value budget",
			intake:   model.IntakeFields{Urgency: "routine", Language: "ru", BudgetUSD: 6000},
			category: "aesthetic",
			want:     []string{"aesthetic", "routine", "ru", "high-value"},
		},
		{
			name:     "urgent gets priority",
			intake:   model.IntakeFields{Urgency: "urgent", Language: "tr"},
			category: "oncology",
			want:     []string{"oncology", "urgent", "tr", "priority"},
		},
		{
			name:     "boundary budget is not high value",
			intake:   model.IntakeFields{Urgency: "routine", Language: "en", BudgetUSD: 5000},
			category: "hair",
			want:     []string{"hair", "routine", "en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveTags(tt.intake, tt.category))
		})
	}
}
