package admin

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/domain/identity"
	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
	"github.com/homa/homa/internal/platform/db"
)

type Service struct {
	depts      DepartmentRepository
	stats      StatsRepository
	users      identity.UserRepository
	doctors    profile.DoctorRepository
	tx         db.Transactor
	bcryptCost int
	logger     zerolog.Logger
}

func NewService(depts DepartmentRepository, stats StatsRepository, users identity.UserRepository,
	doctors profile.DoctorRepository, tx db.Transactor, bcryptCost int, logger zerolog.Logger) *Service {
	return &Service{
		depts:      depts,
		stats:      stats,
		users:      users,
		doctors:    doctors,
		tx:         tx,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// -- Department --

// CreateDepartment adds a department. Names are unique and compared
// case-sensitively.
func (s *Service) CreateDepartment(ctx context.Context, in DepartmentInput) (*Department, error) {
	in.normalize()
	if in.Name == "" {
		return nil, apperr.Validation("department name is required")
	}
	taken, err := s.depts.NameTaken(ctx, in.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("department %q already exists", in.Name)
	}

	d := &Department{Name: in.Name, Description: in.Description, IsActive: true}
	if err := s.depts.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) EditDepartment(ctx context.Context, id int64, in DepartmentInput) (*Department, error) {
	in.normalize()
	if in.Name == "" {
		return nil, apperr.Validation("department name is required")
	}
	d, err := s.depts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.depts.NameTaken(ctx, in.Name, d.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("department %q already exists", in.Name)
	}

	d.Name = in.Name
	d.Description = in.Description
	if err := s.depts.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	return s.depts.GetByID(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	return s.depts.List(ctx, limit, offset)
}

// -- Doctor --

// CreateDoctor onboards a doctor: a user with role doctor and its profile,
// written together. The display code embeds the department at creation.
func (s *Service) CreateDoctor(ctx context.Context, req CreateDoctorRequest) (*profile.Doctor, error) {
	email, err := identity.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Qualification = strings.TrimSpace(req.Qualification)
	switch {
	case req.Password == "":
		return nil, apperr.Validation("password is required")
	case req.FullName == "":
		return nil, apperr.Validation("full_name is required")
	case req.DepartmentID == 0:
		return nil, apperr.Validation("department_id is required")
	case req.Experience < 0:
		return nil, apperr.Validation("experience must not be negative")
	}
	if req.Qualification == "" {
		req.Qualification = profile.DefaultQualification
	}
	if req.Experience == 0 {
		req.Experience = profile.DefaultExperience
	}

	taken, err := s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("email already registered")
	}
	dept, err := s.depts.GetByID(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var doc *profile.Doctor
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user := &identity.User{Email: email, PasswordHash: hash, Role: auth.RoleDoctor}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		doc = &profile.Doctor{
			Code:           profile.DoctorCode(dept.ID, user.ID),
			UserID:         user.ID,
			FullName:       req.FullName,
			Qualification:  req.Qualification,
			Experience:     req.Experience,
			Status:         profile.DoctorAvailable,
			DepartmentID:   dept.ID,
			DepartmentName: dept.Name,
			Email:          email,
		}
		return s.doctors.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("doctor_id", doc.ID).Str("code", doc.Code).Msg("doctor onboarded")
	return doc, nil
}

// EditDoctor replaces a doctor's editable fields. The code stays as it was
// minted, even when the department changes.
func (s *Service) EditDoctor(ctx context.Context, id int64, req EditDoctorRequest) (*profile.Doctor, error) {
	email, err := identity.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Qualification = strings.TrimSpace(req.Qualification)
	if req.FullName == "" || req.Qualification == "" || req.DepartmentID == 0 || req.Experience <= 0 {
		return nil, apperr.Validation("all fields are required")
	}
	status, err := profile.ParseDoctorStatus(req.Status)
	if err != nil {
		return nil, err
	}

	doc, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dept, err := s.depts.GetByID(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if email != doc.Email {
			taken, err := s.users.EmailTaken(ctx, email, doc.UserID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("email already registered")
			}
			if err := s.users.UpdateEmail(ctx, doc.UserID, email); err != nil {
				return err
			}
		}
		doc.Email = email
		doc.FullName = req.FullName
		doc.Qualification = req.Qualification
		doc.Experience = req.Experience
		doc.DepartmentID = dept.ID
		doc.DepartmentName = dept.Name
		doc.Status = status
		return s.doctors.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// -- Moderation --

// SetBlocked toggles a user's blocked flag. Appointments are left as they
// are. Admins cannot block themselves.
func (s *Service) SetBlocked(ctx context.Context, actor *auth.Actor, userID int64, blocked bool) (*identity.User, error) {
	if blocked && actor != nil && actor.UserID == userID {
		return nil, apperr.Conflict("you cannot blacklist your own account")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetBlocked(ctx, userID, blocked); err != nil {
		return nil, err
	}
	user.Blocked = blocked
	s.logger.Info().Int64("user_id", userID).Bool("blocked", blocked).Msg("user moderation updated")
	return user, nil
}

func (s *Service) Blacklist(ctx context.Context, actor *auth.Actor, userID int64) (*identity.User, error) {
	return s.SetBlocked(ctx, actor, userID, true)
}

func (s *Service) Unblacklist(ctx context.Context, actor *auth.Actor, userID int64) (*identity.User, error) {
	return s.SetBlocked(ctx, actor, userID, false)
}

func (s *Service) Dashboard(ctx context.Context) (*Stats, error) {
	return s.stats.Counts(ctx)
}
