// Package storage provides the data persistence layer for the intake platform.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrNotFound     = errors.New("not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateHospital validates a partner hospital.
func validateHospital(hospital *model.PartnerHospital) error {
	if hospital == nil {
		return fmt.Errorf("%w: hospital", ErrNilParameter)
	}
	return hospital.Validate()
}

// validateIntakeRecord validates a patient intake record, including the
// commission snapshot invariant.
func validateIntakeRecord(record *model.PatientIntakeRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	return record.Validate()
}

// validateTravelRequest validates a travel request.
func validateTravelRequest(request *model.TravelRequest) error {
	if request == nil {
		return fmt.Errorf("%w: request", ErrNilParameter)
	}
	return request.Validate()
}
