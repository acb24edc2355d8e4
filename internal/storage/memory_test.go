package storage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

func TestMemoryStorage_HospitalLifecycle(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	for _, id := range []string{"ZZZ-001", "AAA-002"} {
		if err := store.SaveHospital(ctx, testHospital(id)); err != nil {
			t.Fatalf("Failed to save hospital %s: %v", id, err)
		}
	}

	hospitals, err := store.GetActiveHospitals(ctx)
	if err != nil {
		t.Fatalf("Failed to list hospitals: %v", err)
	}
	if len(hospitals) != 2 {
		t.Fatalf("Expected 2 hospitals, got %d", len(hospitals))
	}
	// Insertion order, not alphabetical.
	if hospitals[0].HospitalID != "ZZZ-001" || hospitals[1].HospitalID != "AAA-002" {
		t.Errorf("Order = %s, %s", hospitals[0].HospitalID, hospitals[1].HospitalID)
	}

	if _, err := store.GetHospital(ctx, "MISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	if err := store.SaveHospital(ctx, testHospital("CPY-001")); err != nil {
		t.Fatalf("Failed to save hospital: %v", err)
	}

	got, err := store.GetHospital(ctx, "CPY-001")
	if err != nil {
		t.Fatalf("Failed to get hospital: %v", err)
	}

	// Mutating the returned value must not corrupt the store.
	got.Specialties[0] = "corrupted"
	got.Rating = 1.0

	again, err := store.GetHospital(ctx, "CPY-001")
	if err != nil {
		t.Fatalf("Failed to re-get hospital: %v", err)
	}
	if again.Specialties[0] == "corrupted" || again.Rating == 1.0 {
		t.Error("Store returned a shared reference instead of a copy")
	}
}

func TestMemoryStorage_IntakeLifecycle(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	record := testIntakeRecord("MED-MEM-000001")
	if err := store.InsertIntakeRecord(ctx, record); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if err := store.InsertIntakeRecord(ctx, record); err == nil {
		t.Error("Duplicate insert should fail")
	}

	if err := store.UpdatePatientStatus(ctx, record.PatientID, model.StatusDocsRequested); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}
	got, err := store.GetPatient(ctx, record.PatientID)
	if err != nil {
		t.Fatalf("Failed to get patient: %v", err)
	}
	if got.Status != model.StatusDocsRequested {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusDocsRequested)
	}

	if err := store.UpdatePatientStatus(ctx, "MISSING", model.StatusCancelled); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStorage_ListAndSummary(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ids := []string{"MED-M-000001", "MED-M-000002", "MED-M-000003"}
	for i, id := range ids {
		record := testIntakeRecord(id)
		record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		record.UpdatedAt = record.CreatedAt
		if err := store.InsertIntakeRecord(ctx, record); err != nil {
			t.Fatalf("Failed to insert %s: %v", id, err)
		}
	}
	if err := store.UpdatePatientStatus(ctx, ids[0], model.StatusCompleted); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	all, err := store.ListPatients(ctx, service.PatientFilter{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 3 || all[0].PatientID != ids[2] {
		t.Errorf("Unexpected list order: %v", all)
	}

	completed := model.StatusCompleted
	filtered, err := store.ListPatients(ctx, service.PatientFilter{Status: &completed})
	if err != nil {
		t.Fatalf("Failed to filter: %v", err)
	}
	if len(filtered) != 1 || filtered[0].PatientID != ids[0] {
		t.Errorf("Unexpected filter result: %v", filtered)
	}

	summary, err := store.GetCommissionSummary(ctx)
	if err != nil {
		t.Fatalf("Failed to summarize: %v", err)
	}
	if summary.TotalPatients != 3 {
		t.Errorf("TotalPatients = %d, want 3", summary.TotalPatients)
	}
	if math.Abs(summary.ConfirmedCommissionUSD-660) > 1e-9 {
		t.Errorf("Confirmed = %v, want 660", summary.ConfirmedCommissionUSD)
	}
	if math.Abs(summary.PendingCommissionUSD-1320) > 1e-9 {
		t.Errorf("Pending = %v, want 1320", summary.PendingCommissionUSD)
	}
}

func TestMemoryStorage_TransactionSemantics(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	t.Run("commit applies atomically", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("Failed to begin tx: %v", err)
		}
		if err := tx.SaveHospital(ctx, testHospital("MTX-001")); err != nil {
			t.Fatalf("Failed to save in tx: %v", err)
		}

		// Not visible outside before commit.
		if _, err := store.GetHospital(ctx, "MTX-001"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Uncommitted write leaked: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}
		if _, err := store.GetHospital(ctx, "MTX-001"); err != nil {
			t.Errorf("Committed write missing: %v", err)
		}
	})

	t.Run("rollback discards", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("Failed to begin tx: %v", err)
		}
		if err := tx.SaveHospital(ctx, testHospital("MTX-002")); err != nil {
			t.Fatalf("Failed to save in tx: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("Failed to rollback: %v", err)
		}
		if _, err := store.GetHospital(ctx, "MTX-002"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Rolled-back write leaked: %v", err)
		}
	})

	t.Run("overlapping writers keep both writes", func(t *testing.T) {
		tx1, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("Failed to begin tx1: %v", err)
		}
		if err := tx1.InsertIntakeRecord(ctx, testIntakeRecord("MED-OVR-000001")); err != nil {
			t.Fatalf("Failed to insert in tx1: %v", err)
		}

		// The second writer starts before the first commit; it must wait
		// for tx1 instead of committing a snapshot that predates it.
		done := make(chan error, 1)
		go func() {
			tx2, err := store.BeginTx(ctx)
			if err != nil {
				done <- err
				return
			}
			if err := tx2.InsertIntakeRecord(ctx, testIntakeRecord("MED-OVR-000002")); err != nil {
				done <- err
				return
			}
			done <- tx2.Commit()
		}()

		if err := tx1.Commit(); err != nil {
			t.Fatalf("Failed to commit tx1: %v", err)
		}
		if err := <-done; err != nil {
			t.Fatalf("Second writer failed: %v", err)
		}

		for _, id := range []string{"MED-OVR-000001", "MED-OVR-000002"} {
			if _, err := store.GetPatient(ctx, id); err != nil {
				t.Errorf("Patient %s lost after overlapping commits: %v", id, err)
			}
		}
	})

	t.Run("direct write waits for open transaction", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("Failed to begin tx: %v", err)
		}
		if err := tx.SaveHospital(ctx, testHospital("MTX-TX-003")); err != nil {
			t.Fatalf("Failed to save in tx: %v", err)
		}

		done := make(chan error, 1)
		go func() {
			done <- store.SaveHospital(ctx, testHospital("MTX-DIRECT-004"))
		}()

		if err := tx.Commit(); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}
		if err := <-done; err != nil {
			t.Fatalf("Direct write failed: %v", err)
		}

		for _, id := range []string{"MTX-TX-003", "MTX-DIRECT-004"} {
			if _, err := store.GetHospital(ctx, id); err != nil {
				t.Errorf("Hospital %s lost: %v", id, err)
			}
		}
	})

	t.Run("finished transaction refuses reuse", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("Failed to begin tx: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}
		if err := tx.Commit(); err == nil {
			t.Error("Second commit should fail")
		}
		if err := tx.Rollback(); err == nil {
			t.Error("Rollback after commit should fail")
		}
	})
}
