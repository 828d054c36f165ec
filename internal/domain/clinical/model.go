package clinical

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/homa/homa/internal/domain/profile"
)

// Treatment is the doctor's record for one appointment.
type Treatment struct {
	ID            int64     `db:"id" json:"id"`
	AppointmentID int64     `db:"appointment_id" json:"appointment_id"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Prescription  string    `db:"prescription" json:"prescription"`
	Notes         string    `db:"notes" json:"notes"`
	FollowUp      bool      `db:"follow_up" json:"follow_up"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// HistoryEntry is a treatment with the appointment context it belongs to.
type HistoryEntry struct {
	Treatment
	PatientID       int64  `db:"patient_id" json:"patient_id"`
	DoctorID        int64  `db:"doctor_id" json:"doctor_id"`
	AppointmentDate string `db:"appointment_date" json:"appointment_date"`
	DoctorName      string `db:"doctor_name" json:"doctor_name"`
}

// History is a patient's treatment record, newest first.
type History struct {
	Patient *profile.Patient `json:"patient"`
	Entries []*HistoryEntry  `json:"history"`
}

// Flag binds a checkbox: a submitted value is true unless it spells false.
// JSON bodies may send a boolean or a string.
type Flag bool

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "0", "off", "no":
		return false
	}
	return true
}

// UnmarshalParam implements echo.BindUnmarshaler.
func (f *Flag) UnmarshalParam(s string) error {
	*f = Flag(parseFlag(s))
	return nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case string:
		*f = Flag(parseFlag(t))
	case nil:
		*f = false
	default:
		*f = true
	}
	return nil
}

// TreatmentRequest is the treatment form.
type TreatmentRequest struct {
	Diagnosis    string `json:"diagnosis" form:"diagnosis"`
	Prescription string `json:"prescription" form:"prescription"`
	Notes        string `json:"notes" form:"notes"`
	FollowUp     Flag   `json:"follow_up" form:"follow_up"`
}
