//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/homa/homa/internal/domain/clinical"
	"github.com/homa/homa/internal/domain/scheduling"
	"github.com/homa/homa/internal/platform/apperr"
)

func TestAppointmentLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	dept := e.createDepartment(t, "Cardiology")
	doc := e.createDoctor(t, dept.ID, "Dr. Sarah Chen", "sarah.chen@homa.com")
	pat := e.registerPatient(t, "John Doe", "john.doe@gmail.com", "555-34M99")

	var apptID int64

	t.Run("Book", func(t *testing.T) {
		a, err := e.scheduling.Book(ctx, pat.ID, doc.ID, scheduling.BookRequest{Date: "2030-05-01", Time: "10:30"})
		if err != nil {
			t.Fatalf("Book: %v", err)
		}
		if a.ID == 0 {
			t.Fatal("expected non-zero ID")
		}
		apptID = a.ID

		got, err := e.scheduling.Get(ctx, a.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Date != "2030-05-01" || got.Time != "10:30" {
			t.Errorf("expected 2030-05-01 10:30, got %s %s", got.Date, got.Time)
		}
		if got.Status != scheduling.StatusBooked {
			t.Errorf("expected booked, got %s", got.Status)
		}
		if got.PatientName != "John Doe" || got.DoctorName != "Dr. Sarah Chen" {
			t.Errorf("unexpected names %q / %q", got.PatientName, got.DoctorName)
		}
	})

	t.Run("ListForDoctor_GroupsByDay", func(t *testing.T) {
		for _, req := range []scheduling.BookRequest{
			{Date: "2030-05-02", Time: "08:00"},
			{Date: "2030-05-01", Time: "09:15"},
		} {
			if _, err := e.scheduling.Book(ctx, pat.ID, doc.ID, req); err != nil {
				t.Fatalf("Book %v: %v", req, err)
			}
		}

		days, err := e.scheduling.ListForDoctor(ctx, doc.ID)
		if err != nil {
			t.Fatalf("ListForDoctor: %v", err)
		}
		if len(days) != 2 {
			t.Fatalf("expected 2 days, got %d", len(days))
		}
		if days[0].Date != "2030-05-01" || days[1].Date != "2030-05-02" {
			t.Errorf("unexpected day order %s, %s", days[0].Date, days[1].Date)
		}
		if len(days[0].Appointments) != 2 || days[0].Appointments[0].Time != "09:15" {
			t.Errorf("expected 09:15 first on 2030-05-01, got %+v", days[0].Appointments)
		}
	})

	t.Run("ListForPatient_SoonestFirst", func(t *testing.T) {
		booked, err := e.scheduling.ListForPatient(ctx, pat.ID, "")
		if err != nil {
			t.Fatalf("ListForPatient: %v", err)
		}
		if len(booked) != 3 {
			t.Fatalf("expected 3 booked, got %d", len(booked))
		}
		if booked[0].Time != "09:15" || booked[2].Date != "2030-05-02" {
			t.Errorf("unexpected order: %s %s .. %s", booked[0].Date, booked[0].Time, booked[2].Date)
		}
	})

	t.Run("Cancel_OwnerOnly", func(t *testing.T) {
		other := e.registerPatient(t, "Jane Smith", "jane.smith@yahoo.com", "555-29F99")
		_, err := e.scheduling.Cancel(ctx, apptID, other.ID)
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}

		a, err := e.scheduling.Cancel(ctx, apptID, pat.ID)
		if err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if a.Status != scheduling.StatusCancelled {
			t.Errorf("expected cancelled, got %s", a.Status)
		}

		if _, err := e.scheduling.Cancel(ctx, apptID, pat.ID); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("expected conflict on second cancel, got %v", err)
		}
	})

	t.Run("Treatment_CompletesCancelledAppointment", func(t *testing.T) {
		tr, err := e.clinical.RecordTreatment(ctx, apptID, doc.ID, clinical.TreatmentRequest{
			Diagnosis:    "Hypertension",
			Prescription: "Amlodipine 5mg",
			FollowUp:     true,
		})
		if err != nil {
			t.Fatalf("RecordTreatment: %v", err)
		}
		if tr.ID == 0 {
			t.Fatal("expected non-zero treatment ID")
		}

		a, err := e.scheduling.Get(ctx, apptID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if a.Status != scheduling.StatusCompleted {
			t.Errorf("expected completed, got %s", a.Status)
		}
	})

	t.Run("History", func(t *testing.T) {
		h, err := e.clinical.GetHistory(ctx, pat.ID)
		if err != nil {
			t.Fatalf("GetHistory: %v", err)
		}
		if len(h.Entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(h.Entries))
		}
		entry := h.Entries[0]
		if entry.Diagnosis != "Hypertension" || !entry.FollowUp {
			t.Errorf("unexpected entry %+v", entry)
		}
		if entry.DoctorName != "Dr. Sarah Chen" || entry.AppointmentDate != "2030-05-01" {
			t.Errorf("unexpected join fields %q %q", entry.DoctorName, entry.AppointmentDate)
		}
	})

	t.Run("Delete_RemovesTreatments", func(t *testing.T) {
		if err := e.scheduling.Delete(ctx, apptID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := e.scheduling.Get(ctx, apptID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found after delete, got %v", err)
		}
		h, err := e.clinical.GetHistory(ctx, pat.ID)
		if err != nil {
			t.Fatalf("GetHistory: %v", err)
		}
		if len(h.Entries) != 0 {
			t.Errorf("expected empty history, got %d", len(h.Entries))
		}
	})
}

func TestBook_AvailabilityGate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	dept := e.createDepartment(t, "Neurology")
	doc := e.createDoctor(t, dept.ID, "Dr. Elena Rodriguez", "elena.rod@homa.com")
	pat := e.registerPatient(t, "Emily White", "e.white@provider.com", "555-19F99")

	if _, err := e.profile.UpdateAvailability(ctx, doc.ID, "on-leave"); err != nil {
		t.Fatalf("UpdateAvailability: %v", err)
	}

	_, err := e.scheduling.Book(ctx, pat.ID, doc.ID, scheduling.BookRequest{Date: "2030-01-10", Time: "11:00"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for doctor on leave, got %v", err)
	}

	booked, err := e.scheduling.ListForPatient(ctx, pat.ID, "booked")
	if err != nil {
		t.Fatalf("ListForPatient: %v", err)
	}
	if len(booked) != 0 {
		t.Errorf("expected no appointments, got %d", len(booked))
	}
}

func TestTransitionByDoctor_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	dept := e.createDepartment(t, "Orthopedics")
	owner := e.createDoctor(t, dept.ID, "Dr. Marcus Thorne", "m.thorne@homa.com")
	other := e.createDoctor(t, dept.ID, "Dr. Alan Grant", "a.grant@homa.com")
	pat := e.registerPatient(t, "Robert Brown", "r.brown@outlook.com", "555-52M99")

	a, err := e.scheduling.Book(ctx, pat.ID, owner.ID, scheduling.BookRequest{Date: "2030-02-01", Time: "14:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if _, err := e.scheduling.TransitionByDoctor(ctx, a.ID, other.ID, "completed"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := e.scheduling.TransitionByDoctor(ctx, a.ID, owner.ID, "completed"); err != nil {
		t.Fatalf("TransitionByDoctor: %v", err)
	}
	completed, err := e.scheduling.ListForPatient(ctx, pat.ID, "completed")
	if err != nil {
		t.Fatalf("ListForPatient: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != a.ID {
		t.Errorf("expected the appointment in completed list, got %+v", completed)
	}
}

func TestRecordTreatment_FailureKeepsStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	dept := e.createDepartment(t, "Pediatrics")
	doc := e.createDoctor(t, dept.ID, "Dr. James Wilson", "j.wilson@homa.com")
	pat := e.registerPatient(t, "Michael Scott", "m.scott@dunder.com", "555-45M99")

	a, err := e.scheduling.Book(ctx, pat.ID, doc.ID, scheduling.BookRequest{Date: "2030-03-03", Time: "09:00"})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	_, err = e.clinical.RecordTreatment(ctx, a.ID, doc.ID, clinical.TreatmentRequest{Diagnosis: "Flu"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := e.scheduling.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != scheduling.StatusBooked {
		t.Errorf("expected booked, got %s", got.Status)
	}
}
