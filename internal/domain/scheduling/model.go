package scheduling

import (
	"strings"
	"time"

	"github.com/homa/homa/internal/platform/apperr"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus accepts the stored value ("completed") or the enum name used
// by forms and the JSON API ("COMPLETED"). Unknown values are rejected.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusBooked:
		return StatusBooked, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", apperr.Validation("unknown appointment status %q", s)
	}
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is a booked slot between a patient and a doctor. PatientID and
// DoctorID never change after creation.
type Appointment struct {
	ID          int64     `db:"id" json:"id"`
	PatientID   int64     `db:"patient_id" json:"patient_id"`
	DoctorID    int64     `db:"doctor_id" json:"doctor_id"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	PatientName string    `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name,omitempty"`
}

// BookRequest is the booking form. Date is YYYY-MM-DD, Time is HH:MM.
type BookRequest struct {
	Date string `json:"date" form:"date"`
	Time string `json:"time" form:"time"`
}

// AdminUpdateRequest changes an appointment's status, date, or both.
type AdminUpdateRequest struct {
	Status *string `json:"status,omitempty"`
	Date   *string `json:"date,omitempty"`
}

// DayBucket holds the appointments of a single day, in time order.
type DayBucket struct {
	Date         string         `json:"date"`
	Appointments []*Appointment `json:"appointments"`
}

// GroupByDay splits appointments into buckets of consecutive equal dates.
// The input must already be sorted by date.
func GroupByDay(appts []*Appointment) []DayBucket {
	buckets := []DayBucket{}
	for _, a := range appts {
		n := len(buckets)
		if n > 0 && buckets[n-1].Date == a.Date {
			buckets[n-1].Appointments = append(buckets[n-1].Appointments, a)
			continue
		}
		buckets = append(buckets, DayBucket{Date: a.Date, Appointments: []*Appointment{a}})
	}
	return buckets
}

// PatientDashboard is the patient's landing view.
type PatientDashboard struct {
	Upcoming []*Appointment `json:"upcoming"`
	Past     []*Appointment `json:"past"`
}

func parseDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", apperr.Validation("date must be formatted as YYYY-MM-DD")
	}
	return d.Format(DateLayout), nil
}

func parseTime(s string) (string, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return "", apperr.Validation("time must be formatted as HH:MM")
	}
	return t.Format(TimeLayout), nil
}
