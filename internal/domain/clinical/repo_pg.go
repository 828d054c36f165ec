package clinical

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homa/homa/internal/platform/db"
)

type treatmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewTreatmentRepoPG(pool *pgxpool.Pool) TreatmentRepository {
	return &treatmentRepoPG{pool: pool}
}

func (r *treatmentRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const historySelect = `SELECT t.id, t.appointment_id, t.diagnosis, t.prescription, t.notes,
	t.follow_up, t.created_at, a.patient_id, a.doctor_id,
	to_char(a.date, 'YYYY-MM-DD'), d.full_name
	FROM treatments t
	JOIN appointments a ON a.id = t.appointment_id
	JOIN doctors d ON d.id = a.doctor_id`

func (r *treatmentRepoPG) scanEntry(row pgx.Row) (*HistoryEntry, error) {
	var h HistoryEntry
	err := row.Scan(&h.ID, &h.AppointmentID, &h.Diagnosis, &h.Prescription, &h.Notes,
		&h.FollowUp, &h.CreatedAt, &h.PatientID, &h.DoctorID,
		&h.AppointmentDate, &h.DoctorName)
	return &h, err
}

func (r *treatmentRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*HistoryEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HistoryEntry
	for rows.Next() {
		h, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatments (appointment_id, diagnosis, prescription, notes, follow_up)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		t.AppointmentID, t.Diagnosis, t.Prescription, t.Notes, t.FollowUp).Scan(&t.ID, &t.CreatedAt)
}

func (r *treatmentRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*HistoryEntry, error) {
	return r.list(ctx, historySelect+` WHERE a.patient_id = $1 ORDER BY t.created_at DESC, t.id DESC`, patientID)
}

func (r *treatmentRepoPG) ListAll(ctx context.Context, limit, offset int) ([]*HistoryEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM treatments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx, historySelect+` ORDER BY t.created_at DESC, t.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
