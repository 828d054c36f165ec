package profile

import (
	"context"
	"strings"

	"github.com/homa/homa/internal/platform/apperr"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository) *Service {
	return &Service{patients: patients, doctors: doctors}
}

// -- Patient --

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// UpdatePatientProfile applies a patient's own edits. Phone must stay unique.
func (s *Service) UpdatePatientProfile(ctx context.Context, patientID int64, upd PatientUpdate) (*Patient, error) {
	upd.FullName = strings.TrimSpace(upd.FullName)
	upd.Phone = strings.TrimSpace(upd.Phone)
	if upd.FullName == "" {
		return nil, apperr.Validation("full_name is required")
	}
	if upd.Phone == "" {
		return nil, apperr.Validation("phone is required")
	}

	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if upd.Phone != p.Phone {
		taken, err := s.patients.PhoneTaken(ctx, upd.Phone, p.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("phone number already registered")
		}
	}

	p.FullName = upd.FullName
	p.Phone = upd.Phone
	p.Address = strings.TrimSpace(upd.Address)
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// -- Doctor --

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

// UpdateAvailability lets a doctor change their own status.
func (s *Service) UpdateAvailability(ctx context.Context, doctorID int64, status string) (DoctorStatus, error) {
	st, err := ParseDoctorStatus(status)
	if err != nil {
		return "", err
	}
	if err := s.doctors.UpdateStatus(ctx, doctorID, st); err != nil {
		return "", err
	}
	return st, nil
}
