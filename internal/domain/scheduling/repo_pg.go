package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/db"
)

type appointmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Dates and times travel as text so the JSON shape matches the form input.
const apptSelect = `SELECT a.id, a.patient_id, a.doctor_id,
	to_char(a.date, 'YYYY-MM-DD'), to_char(a.time, 'HH24:MI'),
	a.status, a.created_at, p.full_name, d.full_name
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
		&a.Status, &a.CreatedAt, &a.PatientName, &a.DoctorName)
	return &a, err
}

func (r *appointmentRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, date, time, status)
		VALUES ($1, $2, $3::date, $4::time, $5)
		RETURNING id, created_at`,
		a.PatientID, a.DoctorID, a.Date, a.Time, a.Status).Scan(&a.ID, &a.CreatedAt)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := r.scanAppt(r.conn(ctx).QueryRow(ctx, apptSelect+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *appointmentRepoPG) UpdateDate(ctx context.Context, id int64, date string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE appointments SET date = $2::date WHERE id = $1`, id, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

// Delete removes the appointment and its treatments.
func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatments WHERE appointment_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error) {
	return r.list(ctx, apptSelect+` WHERE a.doctor_id = $1 ORDER BY a.date ASC, a.time ASC, a.id ASC`, doctorID)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int64, status Status) ([]*Appointment, error) {
	order := ` ORDER BY a.date DESC, a.time DESC, a.id DESC`
	if status == StatusBooked {
		order = ` ORDER BY a.date ASC, a.time ASC, a.id ASC`
	}
	return r.list(ctx, apptSelect+` WHERE a.patient_id = $1 AND a.status = $2`+order, patientID, status)
}

func (r *appointmentRepoPG) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx, apptSelect+` ORDER BY a.date DESC, a.time DESC, a.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
