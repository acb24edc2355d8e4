package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSQLiteStorage_HospitalRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	want := testHospital("RT-001")
	if err := store.SaveHospital(ctx, want); err != nil {
		t.Fatalf("Failed to save hospital: %v", err)
	}

	got, err := store.GetHospital(ctx, "RT-001")
	if err != nil {
		t.Fatalf("Failed to get hospital: %v", err)
	}
	if got.Name != want.Name || got.City != want.City {
		t.Errorf("Hospital mismatch: got %+v", got)
	}
	if !reflect.DeepEqual(got.Specialties, want.Specialties) {
		t.Errorf("Specialties = %v, want %v", got.Specialties, want.Specialties)
	}
	if !reflect.DeepEqual(got.Languages, want.Languages) {
		t.Errorf("Languages = %v, want %v", got.Languages, want.Languages)
	}
	if got.CommissionRate != want.CommissionRate {
		t.Errorf("CommissionRate = %v, want %v", got.CommissionRate, want.CommissionRate)
	}
}

func TestSQLiteStorage_HospitalNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetHospital(context.Background(), "NOPE-000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_ActiveHospitalsInsertionOrder(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	// Insert in a deliberately non-alphabetical order.
	for _, id := range []string{"ZZZ-001", "AAA-002", "MMM-003"} {
		if err := store.SaveHospital(ctx, testHospital(id)); err != nil {
			t.Fatalf("Failed to save hospital %s: %v", id, err)
		}
	}

	inactive := testHospital("OFF-004")
	inactive.Active = false
	if err := store.SaveHospital(ctx, inactive); err != nil {
		t.Fatalf("Failed to save inactive hospital: %v", err)
	}

	hospitals, err := store.GetActiveHospitals(ctx)
	if err != nil {
		t.Fatalf("Failed to list hospitals: %v", err)
	}

	wantOrder := []string{"ZZZ-001", "AAA-002", "MMM-003"}
	if len(hospitals) != len(wantOrder) {
		t.Fatalf("Expected %d active hospitals, got %d", len(wantOrder), len(hospitals))
	}
	for i, id := range wantOrder {
		if hospitals[i].HospitalID != id {
			t.Errorf("Position %d: got %s, want %s", i, hospitals[i].HospitalID, id)
		}
	}
}

func TestSQLiteStorage_HospitalUpdatePreservesOrder(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, id := range []string{"ONE-001", "TWO-002"} {
		if err := store.SaveHospital(ctx, testHospital(id)); err != nil {
			t.Fatalf("Failed to save hospital %s: %v", id, err)
		}
	}

	// Re-saving the first hospital must not move it to the back.
	updated := testHospital("ONE-001")
	updated.Rating = 4.9
	if err := store.SaveHospital(ctx, updated); err != nil {
		t.Fatalf("Failed to update hospital: %v", err)
	}

	hospitals, err := store.GetActiveHospitals(ctx)
	if err != nil {
		t.Fatalf("Failed to list hospitals: %v", err)
	}
	if hospitals[0].HospitalID != "ONE-001" {
		t.Errorf("Updated hospital moved: order is %s, %s", hospitals[0].HospitalID, hospitals[1].HospitalID)
	}
	if hospitals[0].Rating != 4.9 {
		t.Errorf("Rating = %v, want 4.9", hospitals[0].Rating)
	}
}
