package scheduling

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
)

type Service struct {
	appts   AppointmentRepository
	doctors profile.DoctorRepository
	logger  zerolog.Logger
}

func NewService(appts AppointmentRepository, doctors profile.DoctorRepository, logger zerolog.Logger) *Service {
	return &Service{appts: appts, doctors: doctors, logger: logger}
}

// Book creates a booked appointment for patientID with an available doctor.
// Overlapping bookings are not checked.
func (s *Service) Book(ctx context.Context, patientID, doctorID int64, req BookRequest) (*Appointment, error) {
	if patientID == 0 {
		return nil, apperr.Forbidden("a patient profile is required to book")
	}
	doc, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.Bookable() {
		return nil, apperr.Conflict("doctor is currently unavailable")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	tm, err := parseTime(req.Time)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID:  patientID,
		DoctorID:   doc.ID,
		Date:       date,
		Time:       tm,
		Status:     StatusBooked,
		DoctorName: doc.FullName,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel lets a patient cancel their own booked appointment.
func (s *Service) Cancel(ctx context.Context, appointmentID, patientID int64) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if patientID == 0 || a.PatientID != patientID {
		return nil, apperr.Forbidden("you can only cancel your own appointments")
	}
	if a.Status != StatusBooked {
		return nil, apperr.Conflict("only booked appointments can be cancelled, this one is %s", a.Status)
	}
	if err := s.appts.UpdateStatus(ctx, a.ID, StatusCancelled); err != nil {
		return nil, err
	}
	a.Status = StatusCancelled
	return a, nil
}

// TransitionByDoctor marks the doctor's own appointment completed or
// cancelled. Repeating the current status is allowed.
func (s *Service) TransitionByDoctor(ctx context.Context, appointmentID, doctorID int64, status string) (*Appointment, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if st != StatusCompleted && st != StatusCancelled {
		return nil, apperr.Validation("doctors can only mark appointments completed or cancelled")
	}
	a, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if doctorID == 0 || a.DoctorID != doctorID {
		return nil, apperr.Forbidden("this appointment belongs to another doctor")
	}
	if err := s.appts.UpdateStatus(ctx, a.ID, st); err != nil {
		return nil, err
	}
	a.Status = st
	return a, nil
}

// ListForDoctor returns the doctor's appointments grouped by day.
func (s *Service) ListForDoctor(ctx context.Context, doctorID int64) ([]DayBucket, error) {
	appts, err := s.appts.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return GroupByDay(appts), nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID int64, status string) ([]*Appointment, error) {
	st := StatusBooked
	if status != "" {
		var err error
		if st, err = ParseStatus(status); err != nil {
			return nil, err
		}
	}
	items, err := s.appts.ListByPatient(ctx, patientID, st)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return items, nil
}

// Dashboard returns a patient's upcoming and completed appointments.
func (s *Service) Dashboard(ctx context.Context, patientID int64) (*PatientDashboard, error) {
	upcoming, err := s.ListForPatient(ctx, patientID, string(StatusBooked))
	if err != nil {
		return nil, err
	}
	past, err := s.ListForPatient(ctx, patientID, string(StatusCompleted))
	if err != nil {
		return nil, err
	}
	return &PatientDashboard{Upcoming: upcoming, Past: past}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// GetForActor returns an appointment to an admin or to one of its
// participants.
func (s *Service) GetForActor(ctx context.Context, actor *auth.Actor, id int64) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Is(auth.RoleAdmin):
	case actor.Is(auth.RolePatient) && actor.PatientID != 0 && actor.PatientID == a.PatientID:
	case actor.Is(auth.RoleDoctor) && actor.DoctorID != 0 && actor.DoctorID == a.DoctorID:
	default:
		return nil, apperr.Forbidden("you are not a participant of this appointment")
	}
	return a, nil
}

// AdminUpdate sets status and/or date without lifecycle checks.
func (s *Service) AdminUpdate(ctx context.Context, id int64, req AdminUpdateRequest) (*Appointment, error) {
	if req.Status == nil && req.Date == nil {
		return nil, apperr.Validation("status or date is required")
	}
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		st, err := ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if err := s.appts.UpdateStatus(ctx, a.ID, st); err != nil {
			return nil, err
		}
		a.Status = st
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		if err := s.appts.UpdateDate(ctx, a.ID, date); err != nil {
			return nil, err
		}
		a.Date = date
	}
	s.logger.Info().Int64("appointment_id", a.ID).Str("status", string(a.Status)).
		Str("date", a.Date).Msg("appointment updated by admin")
	return a, nil
}

// Delete hard-deletes an appointment together with its treatments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.appts.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.appts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("appointment_id", id).Msg("appointment deleted")
	return nil
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListAll(ctx, limit, offset)
}
