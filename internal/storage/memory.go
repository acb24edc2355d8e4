package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// It preserves hospital insertion order and follows the same read-your-writes
// and append-only semantics as the SQLite implementation. Intended for tests
// and ephemeral runs.
type MemoryStorage struct {
	hospitals      map[string]*model.PartnerHospital
	hospitalOrder  []string
	patients       map[string]*model.PatientIntakeRecord
	travelRequests map[string]*model.TravelRequest
	mu             sync.RWMutex

	// txMu is held from BeginTx until Commit/Rollback and by every direct
	// write. Commit replaces the base maps with the transaction's shadow
	// copy, which is only sound if no other write lands in between — the
	// same one-writer-at-a-time discipline the SQLite adapter gets from its
	// single connection.
	txMu sync.Mutex
}

// NewMemoryStorage creates an empty in-memory storage instance.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		hospitals:      make(map[string]*model.PartnerHospital),
		patients:       make(map[string]*model.PatientIntakeRecord),
		travelRequests: make(map[string]*model.TravelRequest),
	}
}

// GetActiveHospitals returns active hospitals in insertion order.
func (m *MemoryStorage) GetActiveHospitals(ctx context.Context) ([]model.PartnerHospital, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hospitals []model.PartnerHospital
	for _, id := range m.hospitalOrder {
		if h := m.hospitals[id]; h.Active {
			hospitals = append(hospitals, *copyHospital(h))
		}
	}
	return hospitals, nil
}

// GetHospital returns a hospital by ID.
func (m *MemoryStorage) GetHospital(ctx context.Context, hospitalID string) (*model.PartnerHospital, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hospitalID, "hospitalID"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	hospital, ok := m.hospitals[hospitalID]
	if !ok {
		return nil, fmt.Errorf("%w: hospital %s", ErrNotFound, hospitalID)
	}
	return copyHospital(hospital), nil
}

// SaveHospital inserts or updates a hospital, preserving insertion order.
func (m *MemoryStorage) SaveHospital(ctx context.Context, hospital *model.PartnerHospital) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateHospital(hospital); err != nil {
		return err
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.hospitals[hospital.HospitalID]; !exists {
		m.hospitalOrder = append(m.hospitalOrder, hospital.HospitalID)
	}
	m.hospitals[hospital.HospitalID] = copyHospital(hospital)
	return nil
}

// InsertIntakeRecord persists a new intake record. Duplicate IDs are rejected.
func (m *MemoryStorage) InsertIntakeRecord(ctx context.Context, record *model.PatientIntakeRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIntakeRecord(record); err != nil {
		return err
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.patients[record.PatientID]; exists {
		return fmt.Errorf("patient %s already exists", record.PatientID)
	}

	stored := copyPatient(record)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	m.patients[record.PatientID] = stored
	return nil
}

// GetPatient returns a patient record by ID.
func (m *MemoryStorage) GetPatient(ctx context.Context, patientID string) (*model.PatientIntakeRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(patientID, "patientID"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.patients[patientID]
	if !ok {
		return nil, fmt.Errorf("%w: patient %s", ErrNotFound, patientID)
	}
	return copyPatient(record), nil
}

// UpdatePatientStatus changes only the status of an existing record.
func (m *MemoryStorage) UpdatePatientStatus(ctx context.Context, patientID string, status model.IntakeStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(patientID, "patientID"); err != nil {
		return err
	}
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.patients[patientID]
	if !ok {
		return fmt.Errorf("%w: patient %s", ErrNotFound, patientID)
	}
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	return nil
}

// ListPatients returns records matching the filter, newest first.
func (m *MemoryStorage) ListPatients(ctx context.Context, filter service.PatientFilter) ([]model.PatientIntakeRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, *filter.Status)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []model.PatientIntakeRecord
	for _, record := range m.patients {
		if filter.Status != nil && record.Status != *filter.Status {
			continue
		}
		records = append(records, *copyPatient(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].PatientID > records[j].PatientID
	})

	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(records) {
			start = len(records)
		}
		end := start + filter.Limit
		if end > len(records) {
			end = len(records)
		}
		records = records[start:end]
	}
	return records, nil
}

// GetCommissionSummary aggregates commission over all records.
func (m *MemoryStorage) GetCommissionSummary(ctx context.Context) (*service.CommissionSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	confirmed := make(map[model.IntakeStatus]bool)
	for _, st := range model.ConfirmedStatuses() {
		confirmed[st] = true
	}
	pending := make(map[model.IntakeStatus]bool)
	for _, st := range model.PendingStatuses() {
		pending[st] = true
	}

	summary := &service.CommissionSummary{}
	for _, record := range m.patients {
		summary.TotalPatients++
		switch {
		case confirmed[record.Status]:
			summary.ConfirmedCommissionUSD += record.CommissionUSD
		case pending[record.Status]:
			summary.PendingCommissionUSD += record.CommissionUSD
		}
	}
	summary.ConfirmedCommissionUSD = model.RoundUSD(summary.ConfirmedCommissionUSD)
	summary.PendingCommissionUSD = model.RoundUSD(summary.PendingCommissionUSD)
	summary.TotalPipelineUSD = model.RoundUSD(summary.ConfirmedCommissionUSD + summary.PendingCommissionUSD)
	return summary, nil
}

// SaveTravelRequest records a travel inquiry.
func (m *MemoryStorage) SaveTravelRequest(ctx context.Context, request *model.TravelRequest) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTravelRequest(request); err != nil {
		return err
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *request
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.travelRequests[request.RequestID] = &stored
	return nil
}

// Migrate is a no-op for in-memory storage.
func (m *MemoryStorage) Migrate(ctx context.Context) error {
	return validateContext(ctx)
}

// BeginTx starts a transaction. Writes go to a deep copy of the state and are
// swapped in atomically on commit. Only one transaction can be open at a
// time; a second BeginTx, or a direct write, blocks until the first one
// commits or rolls back.
func (m *MemoryStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	m.txMu.Lock()
	m.mu.RLock()
	defer m.mu.RUnlock()

	shadow := NewMemoryStorage()
	shadow.hospitalOrder = append([]string(nil), m.hospitalOrder...)
	for id, h := range m.hospitals {
		shadow.hospitals[id] = copyHospital(h)
	}
	for id, p := range m.patients {
		shadow.patients[id] = copyPatient(p)
	}
	for id, t := range m.travelRequests {
		req := *t
		shadow.travelRequests[id] = &req
	}

	return &memoryTransaction{base: m, shadow: shadow}, nil
}

// Close is a no-op for in-memory storage.
func (m *MemoryStorage) Close() error {
	return nil
}

// memoryTransaction applies operations to a shadow copy until commit.
type memoryTransaction struct {
	base   *MemoryStorage
	shadow *MemoryStorage
	done   bool
}

func (t *memoryTransaction) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}

	t.base.mu.Lock()
	t.base.hospitals = t.shadow.hospitals
	t.base.hospitalOrder = t.shadow.hospitalOrder
	t.base.patients = t.shadow.patients
	t.base.travelRequests = t.shadow.travelRequests
	t.base.mu.Unlock()

	t.finish()
	return nil
}

func (t *memoryTransaction) Rollback() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.finish()
	return nil
}

// finish releases the writer lock taken by BeginTx. Must run exactly once.
func (t *memoryTransaction) finish() {
	t.done = true
	t.base.txMu.Unlock()
}

func (t *memoryTransaction) GetActiveHospitals(ctx context.Context) ([]model.PartnerHospital, error) {
	return t.shadow.GetActiveHospitals(ctx)
}

func (t *memoryTransaction) GetHospital(ctx context.Context, hospitalID string) (*model.PartnerHospital, error) {
	return t.shadow.GetHospital(ctx, hospitalID)
}

func (t *memoryTransaction) SaveHospital(ctx context.Context, hospital *model.PartnerHospital) error {
	return t.shadow.SaveHospital(ctx, hospital)
}

func (t *memoryTransaction) InsertIntakeRecord(ctx context.Context, record *model.PatientIntakeRecord) error {
	return t.shadow.InsertIntakeRecord(ctx, record)
}

func (t *memoryTransaction) GetPatient(ctx context.Context, patientID string) (*model.PatientIntakeRecord, error) {
	return t.shadow.GetPatient(ctx, patientID)
}

func (t *memoryTransaction) UpdatePatientStatus(ctx context.Context, patientID string, status model.IntakeStatus) error {
	return t.shadow.UpdatePatientStatus(ctx, patientID, status)
}

func (t *memoryTransaction) ListPatients(ctx context.Context, filter service.PatientFilter) ([]model.PatientIntakeRecord, error) {
	return t.shadow.ListPatients(ctx, filter)
}

func (t *memoryTransaction) GetCommissionSummary(ctx context.Context) (*service.CommissionSummary, error) {
	return t.shadow.GetCommissionSummary(ctx)
}

func (t *memoryTransaction) SaveTravelRequest(ctx context.Context, request *model.TravelRequest) error {
	return t.shadow.SaveTravelRequest(ctx, request)
}

func (t *memoryTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *memoryTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *memoryTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

func copyHospital(h *model.PartnerHospital) *model.PartnerHospital {
	dup := *h
	dup.Specialties = append([]string(nil), h.Specialties...)
	dup.Languages = append([]string(nil), h.Languages...)
	return &dup
}

func copyPatient(p *model.PatientIntakeRecord) *model.PatientIntakeRecord {
	dup := *p
	dup.Tags = append([]string(nil), p.Tags...)
	return &dup
}
