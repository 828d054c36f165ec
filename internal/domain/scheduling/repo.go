package scheduling

import (
	"context"
)

// AppointmentRepository defines the persistence interface for appointments.
// UpdateStatus does not check the current status; callers do.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateDate(ctx context.Context, id int64, date string) error
	Delete(ctx context.Context, id int64) error
	// ListByDoctor returns all appointments of a doctor by date and time ascending.
	ListByDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error)
	// ListByPatient returns a patient's appointments in one status. Booked
	// appointments come soonest first, the others most recent first.
	ListByPatient(ctx context.Context, patientID int64, status Status) ([]*Appointment, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
}
