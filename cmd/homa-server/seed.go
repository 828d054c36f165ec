package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/homa/homa/internal/domain/admin"
	"github.com/homa/homa/internal/domain/identity"
	"github.com/homa/homa/internal/platform/apperr"
)

type seedDoctor struct {
	FullName      string
	Email         string
	Qualification string
	Department    string
	Experience    int
}

type seedPatient struct {
	FullName   string
	Email      string
	Gender     string
	BloodGroup string
	Age        int
}

const (
	seedDoctorPassword  = "doc123"
	seedPatientPassword = "patient123"
)

var seedDepartments = []admin.DepartmentInput{
	{Name: "Cardiology", Description: "Heart health and cardiovascular surgery."},
	{Name: "Pediatrics", Description: "Medical care for infants, children, and adolescents."},
	{Name: "Neurology", Description: "Disorders of the brain, spinal cord, and nerves."},
	{Name: "Orthopedics", Description: "Bones, joints, ligaments, and muscles."},
	{Name: "General Medicine", Description: "Primary care and routine consultations."},
}

var seedDoctors = []seedDoctor{
	{FullName: "Dr. Sarah Chen", Email: "sarah.chen@homa.com", Qualification: "MBBS, MD (Cardiology)", Department: "Cardiology", Experience: 12},
	{FullName: "Dr. James Wilson", Email: "j.wilson@homa.com", Qualification: "MBBS, DCH", Department: "Pediatrics", Experience: 8},
	{FullName: "Dr. Elena Rodriguez", Email: "elena.rod@homa.com", Qualification: "MBBS, DM (Neurology)", Department: "Neurology", Experience: 15},
	{FullName: "Dr. Marcus Thorne", Email: "m.thorne@homa.com", Qualification: "MBBS, MS (Ortho)", Department: "Orthopedics", Experience: 10},
	{FullName: "Dr. Alan Grant", Email: "a.grant@homa.com", Qualification: "MBBS", Department: "General Medicine", Experience: 5},
}

var seedPatients = []seedPatient{
	{FullName: "John Doe", Email: "john.doe@gmail.com", Gender: "Male", BloodGroup: "O+", Age: 34},
	{FullName: "Jane Smith", Email: "jane.smith@yahoo.com", Gender: "Female", BloodGroup: "A-", Age: 29},
	{FullName: "Robert Brown", Email: "r.brown@outlook.com", Gender: "Male", BloodGroup: "B+", Age: 52},
	{FullName: "Emily White", Email: "e.white@provider.com", Gender: "Female", BloodGroup: "AB+", Age: 19},
	{FullName: "Michael Scott", Email: "m.scott@dunder.com", Gender: "Male", BloodGroup: "O-", Age: 45},
}

// phone derives a stable demo phone number from age and gender.
func (p seedPatient) phone() string {
	return fmt.Sprintf("555-%d%c99", p.Age, p.Gender[0])
}

func (p seedPatient) registration() identity.RegisterRequest {
	return identity.RegisterRequest{
		Email:      p.Email,
		Password:   seedPatientPassword,
		FullName:   p.FullName,
		Gender:     p.Gender,
		Phone:      p.phone(),
		Address:    "Demo address",
		BloodGroup: p.BloodGroup,
		Age:        p.Age,
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo departments, doctors and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svcs := newServices(cfg, pool, logger)
			if _, err := svcs.identity.BootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
				return fmt.Errorf("bootstrap admin: %w", err)
			}
			return svcs.tx.WithinTx(ctx, func(ctx context.Context) error {
				return seed(ctx, svcs, logger)
			})
		},
	}
}

// seed is idempotent: departments, doctors and patients that already exist
// are skipped.
func seed(ctx context.Context, svcs *services, logger zerolog.Logger) error {
	deptIDs := make(map[string]int64, len(seedDepartments))
	for _, in := range seedDepartments {
		dept, err := svcs.admin.CreateDepartment(ctx, in)
		if errors.Is(err, apperr.ErrConflict) {
			dept, err = svcs.departments.GetByName(ctx, in.Name)
		}
		if err != nil {
			return fmt.Errorf("seed department %q: %w", in.Name, err)
		}
		deptIDs[dept.Name] = dept.ID
	}

	doctors := 0
	for _, d := range seedDoctors {
		_, err := svcs.admin.CreateDoctor(ctx, admin.CreateDoctorRequest{
			Email:         d.Email,
			Password:      seedDoctorPassword,
			FullName:      d.FullName,
			Qualification: d.Qualification,
			Experience:    d.Experience,
			DepartmentID:  deptIDs[d.Department],
		})
		if errors.Is(err, apperr.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed doctor %s: %w", d.Email, err)
		}
		doctors++
	}

	patients := 0
	for _, p := range seedPatients {
		_, _, err := svcs.identity.Register(ctx, p.registration())
		if errors.Is(err, apperr.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed patient %s: %w", p.Email, err)
		}
		patients++
	}

	logger.Info().
		Int("departments", len(deptIDs)).
		Int("doctors_created", doctors).
		Int("patients_created", patients).
		Msg("seed complete")
	return nil
}
