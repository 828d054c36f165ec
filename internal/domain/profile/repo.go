package profile

import (
	"context"
)

// PatientRepository defines the persistence interface for patient profiles.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByUserID(ctx context.Context, userID int64) (*Patient, error)
	// PhoneTaken reports whether phone belongs to a patient other than exceptID.
	PhoneTaken(ctx context.Context, phone string, exceptID int64) (bool, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

// DoctorRepository defines the persistence interface for doctor profiles.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	UpdateStatus(ctx context.Context, id int64, status DoctorStatus) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
}
