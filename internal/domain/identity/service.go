package identity

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
	"github.com/homa/homa/internal/platform/db"
)

type Service struct {
	users      UserRepository
	patients   profile.PatientRepository
	tx         db.Transactor
	tokens     *auth.TokenIssuer
	bcryptCost int
	logger     zerolog.Logger
}

func NewService(users UserRepository, patients profile.PatientRepository, tx db.Transactor,
	tokens *auth.TokenIssuer, bcryptCost int, logger zerolog.Logger) *Service {
	return &Service{
		users:      users,
		patients:   patients,
		tx:         tx,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// NormalizeEmail lower-cases and trims an address and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperr.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Validation("invalid email address")
	}
	return email, nil
}

func validateRegistration(req *RegisterRequest) error {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return err
	}
	req.Email = email
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Gender = strings.TrimSpace(req.Gender)

	switch {
	case req.Password == "":
		return apperr.Validation("password is required")
	case req.FullName == "":
		return apperr.Validation("full_name is required")
	case req.Phone == "":
		return apperr.Validation("phone is required")
	case req.Gender == "":
		return apperr.Validation("gender is required")
	case req.Age < 0 || req.Age > 150:
		return apperr.Validation("age must be between 0 and 150")
	}
	return nil
}

// Register creates a patient account and its profile in one transaction.
// Email and phone uniqueness are checked before anything is written.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *profile.Patient, error) {
	if err := validateRegistration(&req); err != nil {
		return nil, nil, err
	}

	taken, err := s.users.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, apperr.Conflict("email already registered")
	}
	taken, err = s.patients.PhoneTaken(ctx, req.Phone, 0)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, apperr.Conflict("phone number already registered")
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &User{Email: req.Email, PasswordHash: hash, Role: auth.RolePatient}
	patient := &profile.Patient{
		FullName:   req.FullName,
		Gender:     req.Gender,
		Phone:      req.Phone,
		Address:    strings.TrimSpace(req.Address),
		BloodGroup: strings.TrimSpace(req.BloodGroup),
		Age:        req.Age,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		patient.UserID = user.ID
		return s.patients.Create(ctx, patient)
	})
	if err != nil {
		return nil, nil, err
	}
	return user, patient, nil
}

// Login checks credentials and issues an access token. Blocked accounts
// cannot log in.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if user.Blocked {
		return nil, apperr.Forbidden("account is blocked")
	}

	tok, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{IssuedToken: tok, User: user}, nil
}

// BootstrapAdmin creates the first admin account when none exists. It
// reports whether an account was created.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := s.users.CountByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	email, err = NormalizeEmail(email)
	if err != nil {
		return false, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	if err := s.users.Create(ctx, &User{Email: email, PasswordHash: hash, Role: auth.RoleAdmin}); err != nil {
		return false, err
	}
	s.logger.Info().Str("email", email).Msg("created bootstrap admin account")
	return true, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// ResolveActor implements auth.ActorResolver.
func (s *Service) ResolveActor(ctx context.Context, userID int64) (*auth.Actor, error) {
	return s.users.GetActor(ctx, userID)
}
