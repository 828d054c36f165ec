package profile

import (
	"fmt"
	"strings"

	"github.com/homa/homa/internal/platform/apperr"
)

// DoctorStatus is a doctor's bookability state.
type DoctorStatus string

const (
	DoctorAvailable   DoctorStatus = "available"
	DoctorOnLeave     DoctorStatus = "on-leave"
	DoctorBlacklisted DoctorStatus = "blacklisted"
)

// ParseDoctorStatus accepts either the stored value ("on-leave") or the
// upper-case name used by forms ("LEAVE"). Anything else is rejected.
func ParseDoctorStatus(s string) (DoctorStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available":
		return DoctorAvailable, nil
	case "on-leave", "leave":
		return DoctorOnLeave, nil
	case "blacklisted", "blocked":
		return DoctorBlacklisted, nil
	default:
		return "", apperr.Validation("unknown doctor status %q", s)
	}
}

// Bookable reports whether patients may book appointments with the doctor.
func (s DoctorStatus) Bookable() bool {
	return s == DoctorAvailable
}

// Patient is the profile of a user with role patient.
type Patient struct {
	ID         int64  `db:"id" json:"id"`
	UserID     int64  `db:"user_id" json:"user_id"`
	FullName   string `db:"full_name" json:"full_name"`
	Gender     string `db:"gender" json:"gender"`
	Phone      string `db:"phone" json:"phone"`
	Address    string `db:"address" json:"address"`
	BloodGroup string `db:"blood_group" json:"blood_group"`
	Age        int    `db:"age" json:"age"`
}

// Doctor is the profile of a user with role doctor. Code is a display label
// fixed at creation; ID is the key every other table references.
type Doctor struct {
	ID             int64        `db:"id" json:"id"`
	Code           string       `db:"code" json:"code"`
	UserID         int64        `db:"user_id" json:"user_id"`
	FullName       string       `db:"full_name" json:"full_name"`
	Qualification  string       `db:"qualification" json:"qualification"`
	Experience     int          `db:"experience" json:"experience"`
	Status         DoctorStatus `db:"status" json:"status"`
	DepartmentID   int64        `db:"department_id" json:"department_id"`
	DepartmentName string       `db:"department_name" json:"department_name,omitempty"`
	Email          string       `db:"email" json:"email,omitempty"`
}

// DoctorCode renders the display label for a new doctor.
func DoctorCode(departmentID, userID int64) string {
	return fmt.Sprintf("DOC-%d-%d", departmentID, userID)
}

const (
	DefaultQualification = "MBBS"
	DefaultExperience    = 1
)

// PatientUpdate carries the fields a patient may change on their own profile.
type PatientUpdate struct {
	FullName string `json:"full_name" form:"full_name"`
	Phone    string `json:"phone" form:"phone"`
	Address  string `json:"address" form:"address"`
}

// DoctorSummary is the public listing shape of a doctor.
type DoctorSummary struct {
	ID             int64        `json:"id"`
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	Specialization string       `json:"specialization"`
	Status         DoctorStatus `json:"status"`
}

func (d *Doctor) Summary() DoctorSummary {
	return DoctorSummary{
		ID:             d.ID,
		Code:           d.Code,
		Name:           d.FullName,
		Specialization: d.DepartmentName,
		Status:         d.Status,
	}
}
