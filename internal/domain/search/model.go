package search

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/platform/auth"
)

// DefaultLimit caps every result set.
const DefaultLimit = 50

// Query is the search input. Dept and DeptID only narrow patient searches.
type Query struct {
	Q      string `query:"q" json:"q"`
	Dept   string `query:"dept" json:"dept"`
	DeptID int64  `query:"dept_id" json:"dept_id"`
}

func (q *Query) normalize() {
	q.Q = strings.TrimSpace(q.Q)
	q.Dept = strings.TrimSpace(q.Dept)
}

// numericID returns the query as an id when it is a positive integer.
func (q Query) numericID() int64 {
	id, err := strconv.ParseInt(q.Q, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// UserHit is an account row matched by an admin search. Profile fields are
// zero when the user has no profile of that kind.
type UserHit struct {
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	Role        auth.Role `json:"role"`
	Blocked     bool      `json:"is_blocked"`
	PatientID   int64     `json:"patient_id,omitempty"`
	PatientName string    `json:"patient_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DoctorID    int64     `json:"doctor_id,omitempty"`
	DoctorName  string    `json:"doctor_name,omitempty"`
}

// DoctorFilter narrows the doctors a patient can see. Only available
// doctors are ever returned.
type DoctorFilter struct {
	Name         string
	Department   string
	DepartmentID int64
	Limit        int
}

// DepartmentOption is a department choice for the doctor search form.
type DepartmentOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Results holds whichever slices apply to the caller's role. The role's hit
// list is always encoded, as [] when nothing matched.
type Results struct {
	Role        auth.Role           `json:"role"`
	Query       string              `json:"query"`
	Users       []*UserHit          `json:"users,omitempty"`
	Patients    []*profile.Patient  `json:"patients,omitempty"`
	Doctors     []*profile.Doctor   `json:"doctors,omitempty"`
	Departments []*DepartmentOption `json:"departments,omitempty"`
}

func (r *Results) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"role":  r.Role,
		"query": r.Query,
	}
	switch r.Role {
	case auth.RoleAdmin:
		out["users"] = nonNil(r.Users)
	case auth.RoleDoctor:
		out["patients"] = nonNil(r.Patients)
	case auth.RolePatient:
		out["doctors"] = nonNil(r.Doctors)
	}
	if r.Departments != nil {
		out["departments"] = r.Departments
	}
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// prefixPattern builds a LIKE pattern matching values that start with s.
func prefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}
