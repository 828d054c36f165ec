package admin

import (
	"strings"

	"github.com/homa/homa/internal/domain/profile"
)

// Department groups doctors by specialty. Name is unique and compared
// case-sensitively.
type Department struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	IsActive    bool   `db:"is_active" json:"is_active"`
}

// DepartmentInput is the add/edit department form.
type DepartmentInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

func (in *DepartmentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
}

// CreateDoctorRequest is the doctor onboarding form. Qualification and
// Experience fall back to profile defaults when empty.
type CreateDoctorRequest struct {
	Email         string `json:"email" form:"email"`
	Password      string `json:"password" form:"password"`
	FullName      string `json:"full_name" form:"full_name"`
	Qualification string `json:"qualification" form:"qualification"`
	Experience    int    `json:"experience" form:"experience"`
	DepartmentID  int64  `json:"department_id" form:"department_id"`
}

// EditDoctorRequest replaces the editable fields of a doctor. The display
// code is not editable.
type EditDoctorRequest struct {
	Email         string `json:"email" form:"email"`
	FullName      string `json:"full_name" form:"full_name"`
	Qualification string `json:"qualification" form:"qualification"`
	Experience    int    `json:"experience" form:"experience"`
	DepartmentID  int64  `json:"department_id" form:"department_id"`
	Status        string `json:"status" form:"status"`
}

// Stats are the record counts shown on the admin dashboard.
type Stats struct {
	Users              int `json:"users"`
	BlockedUsers       int `json:"blocked_users"`
	Patients           int `json:"patients"`
	Doctors            int `json:"doctors"`
	AvailableDoctors   int `json:"available_doctors"`
	Departments        int `json:"departments"`
	Appointments       int `json:"appointments"`
	BookedAppointments int `json:"booked_appointments"`
	Treatments         int `json:"treatments"`
}

// DoctorForm is what the add-doctor page needs to render its department
// picker.
type DoctorForm struct {
	Departments          []*Department `json:"departments"`
	DefaultQualification string        `json:"default_qualification"`
	DefaultExperience    int           `json:"default_experience"`
}

func newDoctorForm(depts []*Department) DoctorForm {
	if depts == nil {
		depts = []*Department{}
	}
	return DoctorForm{
		Departments:          depts,
		DefaultQualification: profile.DefaultQualification,
		DefaultExperience:    profile.DefaultExperience,
	}
}
