// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// PatientFilter defines filtering options for patient queries.
type PatientFilter struct {
	Status *model.IntakeStatus
	Limit  int
	Offset int
}

// Storage defines the contract for our persistence layer. The core does not
// care whether the backing store is SQLite or in-memory; it only requires
// these operations with read-your-writes semantics and durable inserts.
type Storage interface {
	// Hospital operations
	GetActiveHospitals(ctx context.Context) ([]model.PartnerHospital, error)
	GetHospital(ctx context.Context, hospitalID string) (*model.PartnerHospital, error)
	SaveHospital(ctx context.Context, hospital *model.PartnerHospital) error

	// Patient operations. Records are never hard-deleted.
	InsertIntakeRecord(ctx context.Context, record *model.PatientIntakeRecord) error
	GetPatient(ctx context.Context, patientID string) (*model.PatientIntakeRecord, error)
	UpdatePatientStatus(ctx context.Context, patientID string, status model.IntakeStatus) error
	ListPatients(ctx context.Context, filter PatientFilter) ([]model.PatientIntakeRecord, error)
	GetCommissionSummary(ctx context.Context) (*CommissionSummary, error)

	// Travel operations
	SaveTravelRequest(ctx context.Context, request *model.TravelRequest) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. The Medical handler reads
// hospital data and writes the intake record inside one transaction so the
// commission snapshot reflects a momentarily valid rate.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// Notifier is the fire-and-forget message gateway. The Medical handler never
// calls it; the caller forwards the coordinator message after intake.
type Notifier interface {
	Send(ctx context.Context, channel, recipient, message string) error
}

// CommissionSummary aggregates the referral pipeline.
type CommissionSummary struct {
	TotalPatients          int
	ConfirmedCommissionUSD float64
	PendingCommissionUSD   float64
	TotalPipelineUSD       float64
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
