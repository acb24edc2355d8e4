// Package seed loads the initial partner hospital roster into storage.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

// PartnerHospitals is the launch roster of contracted clinics. Order matters:
// it is the tie-break order for hospital matching.
func PartnerHospitals() []model.PartnerHospital {
	return []model.PartnerHospital{
		{
			HospitalID:          "MEM-IST-001",
			Name:                "Memorial Şişli Hospital",
			City:                "Istanbul",
			Country:             "Turkey",
			ContactWhatsApp:     "+90-549-000-0001",
			Specialties:         []string{"oncology", "checkup", "ophthalmology", "bariatric", "ivf"},
			Languages:           []string{"tr", "en", "ru", "ar"},
			AvgProcedureCostUSD: 6500,
			CommissionRate:      0.22,
			Rating:              4.8,
			Active:              true,
		},
		{
			HospitalID:          "ACI-IST-002",
			Name:                "Acıbadem Maslak Hospital",
			City:                "Istanbul",
			Country:             "Turkey",
			ContactWhatsApp:     "+90-549-000-0002",
			Specialties:         []string{"oncology", "checkup", "dermatology", "bariatric", "ivf"},
			Languages:           []string{"tr", "en", "ru", "de"},
			AvgProcedureCostUSD: 7200,
			CommissionRate:      0.20,
			Rating:              4.9,
			Active:              true,
		},
		{
			HospitalID:          "EST-ANT-003",
			Name:                "EsteNove Aesthetic Clinic",
			City:                "Antalya",
			Country:             "Turkey",
			ContactWhatsApp:     "+90-549-000-0003",
			Specialties:         []string{"aesthetic", "dermatology"},
			Languages:           []string{"tr", "en", "ru"},
			AvgProcedureCostUSD: 5200,
			CommissionRate:      0.25,
			Rating:              4.7,
			Active:              true,
		},
		{
			HospitalID:          "DENT-IST-004",
			Name:                "DentGroup Istanbul",
			City:                "Istanbul",
			Country:             "Turkey",
			ContactWhatsApp:     "+90-549-000-0004",
			Specialties:         []string{"dental"},
			Languages:           []string{"tr", "en"},
			AvgProcedureCostUSD: 1900,
			CommissionRate:      0.22,
			Rating:              4.6,
			Active:              true,
		},
		{
			HospitalID:          "HAIR-IST-005",
			Name:                "HairCure Clinic",
			City:                "Istanbul",
			Country:             "Turkey",
			ContactWhatsApp:     "+90-549-000-0005",
			Specialties:         []string{"hair", "aesthetic"},
			Languages:           []string{"tr", "en", "ru", "ar"},
			AvgProcedureCostUSD: 2800,
			CommissionRate:      0.25,
			Rating:              4.7,
			Active:              true,
		},
	}
}

// DemoPatients returns realistic intake submissions used to populate a fresh
// database for demos. They run through the normal intake pipeline so every
// record carries a real match and commission snapshot.
func DemoPatients() []model.IntakeFields {
	return []model.IntakeFields{
		{FullName: "Elena Petrova", Phone: "+79001234567", Language: "ru", ProcedureInterest: "Ринопластика", Urgency: "soon", BudgetUSD: 4000},
		{FullName: "James Wilson", Phone: "+447700900100", Language: "en", ProcedureInterest: "Hair Transplant", Urgency: "routine", BudgetUSD: 3500},
		{FullName: "Ayse Yilmaz", Phone: "+905321234567", Language: "tr", ProcedureInterest: "Saç Ekimi", Urgency: "routine", BudgetUSD: 2500},
		{FullName: "Maria Ivanova", Phone: "+79009876543", Language: "ru", ProcedureInterest: "Стоматология/Виниры", Urgency: "soon", BudgetUSD: 2000},
		{FullName: "Mehmet Demir", Phone: "+905001234567", Language: "tr", ProcedureInterest: "Göz Ameliyatı", Urgency: "urgent", BudgetUSD: 3000},
	}
}

// DemoTravelRequest is one demo booking inquiry.
type DemoTravelRequest struct {
	FullName string
	Phone    string
	Language string
	CheckIn  string
	RoomType string
	Nights   int
	Guests   int
}

// DemoTravelRequests returns demo booking inquiries for the travel desk.
func DemoTravelRequests() []DemoTravelRequest {
	return []DemoTravelRequest{
		{FullName: "Sergei Volkov", Phone: "+79001111111", Language: "ru", CheckIn: "2026-03-15", RoomType: "deluxe", Nights: 7, Guests: 2},
		{FullName: "Anna Williams", Phone: "+447700111222", Language: "en", CheckIn: "2026-04-01", RoomType: "suite", Nights: 5, Guests: 4},
	}
}

// Options controls seeding behavior.
type Options struct {
	// ShowProgress renders a terminal progress bar while seeding.
	ShowProgress bool
}

// Hospitals writes the launch roster into storage. Existing hospitals are
// updated in place; seeding is idempotent.
func Hospitals(ctx context.Context, store service.Storage, opts Options) error {
	hospitals := PartnerHospitals()

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(hospitals),
			progressbar.OptionSetDescription("Seeding partner hospitals"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i := range hospitals {
		if err := store.SaveHospital(ctx, &hospitals[i]); err != nil {
			return fmt.Errorf("failed to seed hospital %s: %w", hospitals[i].HospitalID, err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}
