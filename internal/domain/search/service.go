package search

import (
	"context"

	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
)

// strategy runs the search available to one role.
type strategy func(ctx context.Context, q Query) (*Results, error)

type Service struct {
	repo       Repository
	limit      int
	strategies map[auth.Role]strategy
}

func NewService(repo Repository) *Service {
	s := &Service{repo: repo, limit: DefaultLimit}
	s.strategies = map[auth.Role]strategy{
		auth.RoleAdmin:   s.searchAsAdmin,
		auth.RoleDoctor:  s.searchAsDoctor,
		auth.RolePatient: s.searchAsPatient,
	}
	return s
}

// Search runs the strategy for the actor's role.
func (s *Service) Search(ctx context.Context, actor *auth.Actor, q Query) (*Results, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	run, ok := s.strategies[actor.Role]
	if !ok {
		return nil, apperr.Forbidden("search is not available for role %s", actor.Role)
	}
	q.normalize()
	res, err := run(ctx, q)
	if err != nil {
		return nil, err
	}
	res.Role = actor.Role
	res.Query = q.Q
	return res, nil
}

// FindDoctors is the patient doctor search, also returning the department
// choices for narrowing it.
func (s *Service) FindDoctors(ctx context.Context, q Query) (*Results, error) {
	q.normalize()
	res, err := s.searchAsPatient(ctx, q)
	if err != nil {
		return nil, err
	}
	depts, err := s.repo.Departments(ctx)
	if err != nil {
		return nil, err
	}
	if depts == nil {
		depts = []*DepartmentOption{}
	}
	res.Role = auth.RolePatient
	res.Query = q.Q
	res.Departments = depts
	return res, nil
}

func (s *Service) searchAsAdmin(ctx context.Context, q Query) (*Results, error) {
	users, err := s.repo.Users(ctx, containsPattern(q.Q), s.limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*UserHit{}
	}
	return &Results{Users: users}, nil
}

func (s *Service) searchAsDoctor(ctx context.Context, q Query) (*Results, error) {
	patients, err := s.repo.Patients(ctx, containsPattern(q.Q), q.numericID(), prefixPattern(q.Q), s.limit)
	if err != nil {
		return nil, err
	}
	if patients == nil {
		patients = []*profile.Patient{}
	}
	return &Results{Patients: patients}, nil
}

func (s *Service) searchAsPatient(ctx context.Context, q Query) (*Results, error) {
	if q.DeptID < 0 {
		return nil, apperr.Validation("dept_id must be positive")
	}
	doctors, err := s.repo.AvailableDoctors(ctx, DoctorFilter{
		Name:         q.Q,
		Department:   q.Dept,
		DepartmentID: q.DeptID,
		Limit:        s.limit,
	})
	if err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []*profile.Doctor{}
	}
	return &Results{Doctors: doctors}, nil
}
