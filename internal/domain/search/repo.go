package search

import (
	"context"

	"github.com/homa/homa/internal/domain/profile"
)

// Repository runs the per-role search queries.
type Repository interface {
	// Users matches email, patient name or phone, and doctor name. Users
	// without a profile still match on email.
	Users(ctx context.Context, pattern string, limit int) ([]*UserHit, error)
	// Patients matches name, exact id, or phone prefix.
	Patients(ctx context.Context, namePattern string, id int64, phonePrefix string, limit int) ([]*profile.Patient, error)
	AvailableDoctors(ctx context.Context, f DoctorFilter) ([]*profile.Doctor, error)
	Departments(ctx context.Context) ([]*DepartmentOption, error)
}
