package model

import (
	"errors"
	"fmt"
	"strings"
)

// Hospital validation errors.
var (
	ErrInvalidHospital = errors.New("invalid hospital")
)

// PartnerHospital is a contracted clinic that patients can be referred to.
// The persistence store owns these records; handlers only ever hold
// read-only copies for the duration of a request.
type PartnerHospital struct {
	HospitalID          string
	Name                string
	City                string
	Country             string
	ContactWhatsApp     string
	Specialties         []string // procedure-category tags
	Languages           []string // ISO 639-1 codes
	AvgProcedureCostUSD float64
	CommissionRate      float64 // fraction in [0, 0.5]
	Rating              float64 // [0, 5]
	Active              bool
}

// Validate checks the hospital's field constraints.
func (h *PartnerHospital) Validate() error {
	if strings.TrimSpace(h.HospitalID) == "" {
		return fmt.Errorf("%w: missing hospital ID", ErrInvalidHospital)
	}
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidHospital)
	}
	if h.CommissionRate < 0 || h.CommissionRate > 0.5 {
		return fmt.Errorf("%w: commission rate %.3f outside [0, 0.5]", ErrInvalidHospital, h.CommissionRate)
	}
	if h.Rating < 0 || h.Rating > 5 {
		return fmt.Errorf("%w: rating %.1f outside [0, 5]", ErrInvalidHospital, h.Rating)
	}
	return nil
}

// HasSpecialty reports whether the hospital covers the given procedure category.
func (h *PartnerHospital) HasSpecialty(category string) bool {
	for _, s := range h.Specialties {
		if s == category {
			return true
		}
	}
	return false
}

// SupportsLanguage reports whether the hospital's coordinators speak the language.
func (h *PartnerHospital) SupportsLanguage(lang string) bool {
	for _, l := range h.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// AsMap renders the hospital for handler responses.
func (h *PartnerHospital) AsMap() map[string]any {
	return map[string]any{
		"hospital_id":     h.HospitalID,
		"name":            h.Name,
		"city":            h.City,
		"country":         h.Country,
		"specialties":     h.Specialties,
		"languages":       h.Languages,
		"commission_rate": h.CommissionRate,
		"rating":          h.Rating,
	}
}
