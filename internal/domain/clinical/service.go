package clinical

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/domain/scheduling"
	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/db"
)

type Service struct {
	treatments TreatmentRepository
	appts      scheduling.AppointmentRepository
	patients   profile.PatientRepository
	tx         db.Transactor
	logger     zerolog.Logger
}

func NewService(treatments TreatmentRepository, appts scheduling.AppointmentRepository,
	patients profile.PatientRepository, tx db.Transactor, logger zerolog.Logger) *Service {
	return &Service{
		treatments: treatments,
		appts:      appts,
		patients:   patients,
		tx:         tx,
		logger:     logger,
	}
}

// RecordTreatment stores a treatment for the doctor's own appointment and
// marks the appointment completed, whatever its previous status.
func (s *Service) RecordTreatment(ctx context.Context, appointmentID, doctorID int64, req TreatmentRequest) (*Treatment, error) {
	req.Diagnosis = strings.TrimSpace(req.Diagnosis)
	req.Prescription = strings.TrimSpace(req.Prescription)
	if req.Diagnosis == "" {
		return nil, apperr.Validation("diagnosis is required")
	}
	if req.Prescription == "" {
		return nil, apperr.Validation("prescription is required")
	}

	appt, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if doctorID == 0 || appt.DoctorID != doctorID {
		return nil, apperr.Forbidden("this appointment belongs to another doctor")
	}
	if appt.Status == scheduling.StatusCancelled {
		s.logger.Warn().Int64("appointment_id", appt.ID).Int64("doctor_id", doctorID).
			Msg("treatment recorded on a cancelled appointment, marking it completed")
	}

	t := &Treatment{
		AppointmentID: appt.ID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         strings.TrimSpace(req.Notes),
		FollowUp:      bool(req.FollowUp),
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.treatments.Create(ctx, t); err != nil {
			return err
		}
		return s.appts.UpdateStatus(ctx, appt.ID, scheduling.StatusCompleted)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetHistory returns every treatment recorded for the patient.
func (s *Service) GetHistory(ctx context.Context, patientID int64) (*History, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	entries, err := s.treatments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*HistoryEntry{}
	}
	return &History{Patient: p, Entries: entries}, nil
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*HistoryEntry, int, error) {
	return s.treatments.ListAll(ctx, limit, offset)
}
