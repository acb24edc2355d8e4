// Package handler implements the sector handlers invoked by the dispatcher.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antigravity-ventures/thaiturk/internal/engine"
	"github.com/antigravity-ventures/thaiturk/internal/lexicon"
	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

// budgetCeilingFactor caps the estimate at 20% over the catalog base price
// regardless of how much the patient says they can pay.
const budgetCeilingFactor = 1.2

// highValueBudgetUSD is the threshold above which an intake is tagged high-value.
const highValueBudgetUSD = 5000

// defaultIntakeLanguage is assumed when the caller states none.
const defaultIntakeLanguage = "ru"

// Medical runs the hospital-matching and commission-estimation engine for
// patient inquiries.
type Medical struct {
	store service.Storage
	lex   *lexicon.Lexicon
}

// NewMedical creates the Medical sector handler.
func NewMedical(store service.Storage, lex *lexicon.Lexicon) *Medical {
	return &Medical{store: store, lex: lex}
}

// Sector implements engine.Handler.
func (m *Medical) Sector() model.Sector { return model.SectorMedical }

// Handle serves routed free-text inquiries. When the message carries contact
// details in its metadata it runs a full intake; otherwise it answers with a
// preliminary match and quote and asks for contact details, since an intake
// record without a name and phone cannot be followed up by a coordinator.
func (m *Medical) Handle(ctx context.Context, req engine.Request) (engine.Response, error) {
	lang := req.Language
	if lang == "" {
		lang = defaultIntakeLanguage
	}

	fullName := req.MetaString("full_name", "")
	phone := req.MetaString("phone", "")
	if fullName == "" || phone == "" {
		return m.preliminaryQuote(ctx, req.Message, lang)
	}

	intake := model.IntakeFields{
		FullName:          fullName,
		Phone:             phone,
		Language:          lang,
		ProcedureInterest: req.Message,
		Urgency:           req.MetaString("urgency", "routine"),
		BudgetUSD:         req.MetaFloat("budget_usd", 0),
		Notes:             req.MetaString("notes", ""),
		ReferralSource:    req.MetaString("referral_source", ""),
		ArrivalDate:       req.MetaString("arrival_date", ""),
	}

	resp, err := m.ProcessIntake(ctx, intake)
	if err != nil {
		return nil, err
	}

	out := engine.Response(resp.AsMap())
	out["agent"] = "MedicalAgent"
	out["status"] = "active"
	out["sector"] = string(model.SectorMedical)
	out["action"] = "referral_coordination"
	return out, nil
}

// preliminaryQuote matches and prices without persisting anything.
func (m *Medical) preliminaryQuote(ctx context.Context, procedureText, lang string) (engine.Response, error) {
	category := m.classifyProcedure(procedureText)
	hospital, err := m.matchHospital(ctx, m.store, category, lang)
	if err != nil {
		return nil, err
	}
	cost := m.estimateCost(category, 0)

	resp := engine.Response{
		"agent":                        "MedicalAgent",
		"status":                       "active",
		"sector":                       string(model.SectorMedical),
		"action":                       "preliminary_quote",
		"procedure_category":           category,
		"estimated_procedure_cost_usd": cost,
		"message": "We received your medical inquiry. Please share your full name and " +
			"phone number so a coordinator can register your case and contact you.",
	}
	if hospital != nil {
		resp["recommended_hospital"] = hospital.AsMap()
	}
	return resp, nil
}

// Fallback implements engine.Handler.
func (m *Medical) Fallback() engine.Response {
	return engine.Response{
		"agent":  "MedicalAgent",
		"status": "active",
		"sector": string(model.SectorMedical),
		"action": "referral_coordination",
		"message": "Your medical consultation request has been received. " +
			"A coordinator will contact you via WhatsApp within 5 minutes.",
		"next_steps": []string{
			"Pre-consultation booking",
			"Medical file preparation",
			"Partner hospital matching",
		},
	}
}

// ProcessIntake registers a new patient inquiry end to end: procedure
// triage, hospital matching, cost and commission estimation, record
// persistence and coordinator messaging. Persistence failures propagate;
// losing an intake silently is not acceptable.
func (m *Medical) ProcessIntake(ctx context.Context, intake model.IntakeFields) (*model.IntakeResponse, error) {
	if err := intake.Validate(); err != nil {
		return nil, err
	}
	if intake.Language == "" {
		intake.Language = defaultIntakeLanguage
	}
	if intake.Urgency == "" {
		intake.Urgency = "routine"
	}

	patientID := newPatientID()
	category := m.classifyProcedure(intake.ProcedureInterest)

	// The hospital read and intake write share one transaction so the
	// commission snapshot reflects a momentarily valid rate.
	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin intake transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	hospital, err := m.matchHospital(ctx, tx, category, intake.Language)
	if err != nil {
		return nil, err
	}

	cost := m.estimateCost(category, intake.BudgetUSD)
	rate := m.lex.DefaultCommissionRate()
	hospitalID := ""
	hospitalName := "TBD"
	if hospital != nil {
		rate = hospital.CommissionRate
		hospitalID = hospital.HospitalID
		hospitalName = hospital.Name
	}
	commission := model.RoundUSD(cost * rate)

	now := time.Now().UTC()
	record := &model.PatientIntakeRecord{
		PatientID:                 patientID,
		Intake:                    intake,
		ProcedureCategory:         category,
		MatchedHospitalID:         hospitalID,
		EstimatedProcedureCostUSD: cost,
		CommissionRate:            rate,
		CommissionUSD:             commission,
		Status:                    model.StatusInquiry,
		Tags:                      deriveTags(intake, category),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := tx.InsertIntakeRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save intake record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit intake: %w", err)
	}

	slog.Info("patient registered",
		"patient_id", patientID,
		"category", category,
		"hospital", hospitalName,
		"commission_usd", commission)

	return &model.IntakeResponse{
		Success:                   true,
		PatientID:                 patientID,
		ProcedureCategory:         category,
		MatchedHospital:           hospital,
		EstimatedProcedureCostUSD: cost,
		CommissionRatePct:         fmt.Sprintf("%.0f%%", rate*100),
		CommissionUSD:             commission,
		NextSteps:                 buildNextSteps(category, hospital, intake),
		CoordinatorMessage:        m.lex.CoordinatorMessage(intake.Language, patientID, hospitalName, cost),
	}, nil
}

// GetPatient returns a registered intake record.
func (m *Medical) GetPatient(ctx context.Context, patientID string) (*model.PatientIntakeRecord, error) {
	return m.store.GetPatient(ctx, patientID)
}

// UpdateStatus moves a patient through the referral pipeline.
func (m *Medical) UpdateStatus(ctx context.Context, patientID string, status model.IntakeStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return m.store.UpdatePatientStatus(ctx, patientID, status)
}

// ListPatients returns intake records, optionally filtered by status.
func (m *Medical) ListPatients(ctx context.Context, status *model.IntakeStatus) ([]model.PatientIntakeRecord, error) {
	return m.store.ListPatients(ctx, service.PatientFilter{Status: status})
}

// CommissionSummary aggregates confirmed and pending commission.
func (m *Medical) CommissionSummary(ctx context.Context) (*service.CommissionSummary, error) {
	return m.store.GetCommissionSummary(ctx)
}

// classifyProcedure is deliberately looser than the sector classifier: a
// case-insensitive substring scan where the first matching rule wins.
func (m *Medical) classifyProcedure(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range m.lex.ProcedureRules() {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule.Category
		}
	}
	return "other"
}

// matchHospital selects the best partner hospital for the category and
// patient language. Candidates are active hospitals covering the category,
// falling back to every active hospital so a recommendation is always made.
// Score = rating + 0.5 language bonus − commission rate: lower-commission
// partners are not penalized for seeming "worse"; the matcher is patient-
// first by policy even where that trades off brokerage revenue. Ties keep
// the first candidate in storage order.
func (m *Medical) matchHospital(ctx context.Context, store service.Storage, category, language string) (*model.PartnerHospital, error) {
	hospitals, err := store.GetActiveHospitals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner hospitals: %w", err)
	}
	if len(hospitals) == 0 {
		slog.Warn("no partner hospitals configured")
		return nil, nil
	}

	var candidates []model.PartnerHospital
	for _, h := range hospitals {
		if h.HasSpecialty(category) {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		candidates = hospitals
	}

	best := 0
	bestScore := hospitalScore(&candidates[0], language)
	for i := 1; i < len(candidates); i++ {
		if score := hospitalScore(&candidates[i], language); score > bestScore {
			best = i
			bestScore = score
		}
	}

	matched := candidates[best]
	slog.Info("hospital matched", "hospital", matched.Name, "score", bestScore)
	return &matched, nil
}

func hospitalScore(h *model.PartnerHospital, language string) float64 {
	score := h.Rating - h.CommissionRate
	if h.SupportsLanguage(language) {
		score += 0.5
	}
	return score
}

// estimateCost honors a stated budget up to 20% over the catalog base
// price: never inflated just because the patient can pay more, never below
// the budget when the budget is under the ceiling.
func (m *Medical) estimateCost(category string, budgetUSD float64) float64 {
	base := m.lex.BasePriceUSD(category)
	if budgetUSD > 0 {
		ceiling := base * budgetCeilingFactor
		if budgetUSD < ceiling {
			return budgetUSD
		}
		return ceiling
	}
	return base
}

// deriveTags is a pure function of the intake data.
func deriveTags(intake model.IntakeFields, category string) []string {
	tags := []string{category, intake.Urgency, intake.Language}
	if intake.BudgetUSD > highValueBudgetUSD {
		tags = append(tags, "high-value")
	}
	if intake.Urgency == "urgent" || intake.Urgency == "emergency" {
		tags = append(tags, "priority")
	}
	out := tags[:0]
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func buildNextSteps(category string, hospital *model.PartnerHospital, intake model.IntakeFields) []string {
	steps := []string{
		"Coordinator will reach out via WhatsApp within 5 minutes",
		"Pre-consultation appointment will be scheduled",
	}
	switch category {
	case "aesthetic", "bariatric", "oncology":
		steps = append(steps, "Existing medical records will be requested (blood work, imaging)")
	}
	city := "Istanbul"
	if hospital != nil && hospital.City != "" {
		city = hospital.City
	}
	steps = append(steps,
		fmt.Sprintf("Transfer to %s will be organized", city),
		"Final quote and payment plan will be presented")
	if intake.ArrivalDate != "" {
		steps = append(steps, fmt.Sprintf("Arrival date %s noted; calendar updated", intake.ArrivalDate))
	}
	return steps
}

func newPatientID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("MED-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
