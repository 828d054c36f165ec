package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/db"
)

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, user_id, full_name, gender, phone, address, blood_group, age`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Gender, &p.Phone, &p.Address, &p.BloodGroup, &p.Age)
	return &p, err
}

func (r *patientRepoPG) getOne(ctx context.Context, where string, arg interface{}) (*Patient, error) {
	p, err := r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (user_id, full_name, gender, phone, address, blood_group, age)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		p.UserID, p.FullName, p.Gender, p.Phone, p.Address, p.BloodGroup, p.Age).Scan(&p.ID)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("phone number already registered")
	}
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *patientRepoPG) GetByUserID(ctx context.Context, userID int64) (*Patient, error) {
	return r.getOne(ctx, `user_id = $1`, userID)
}

func (r *patientRepoPG) PhoneTaken(ctx context.Context, phone string, exceptID int64) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE phone = $1 AND id <> $2)`, phone, exceptID).Scan(&taken)
	return taken, err
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET full_name=$2, gender=$3, phone=$4, address=$5, blood_group=$6, age=$7
		WHERE id = $1`,
		p.ID, p.FullName, p.Gender, p.Phone, p.Address, p.BloodGroup, p.Age)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("phone number already registered")
	}
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY full_name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorSelect = `SELECT d.id, d.code, d.user_id, d.full_name, d.qualification, d.experience,
	d.status, d.department_id, dep.name, u.email
	FROM doctors d
	JOIN departments dep ON dep.id = d.department_id
	JOIN users u ON u.id = d.user_id`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Code, &d.UserID, &d.FullName, &d.Qualification, &d.Experience,
		&d.Status, &d.DepartmentID, &d.DepartmentName, &d.Email)
	return &d, err
}

func (r *doctorRepoPG) getOne(ctx context.Context, where string, arg interface{}) (*Doctor, error) {
	d, err := r.scanDoctor(r.conn(ctx).QueryRow(ctx, doctorSelect+` WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (code, user_id, full_name, qualification, experience, status, department_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		d.Code, d.UserID, d.FullName, d.Qualification, d.Experience, d.Status, d.DepartmentID).Scan(&d.ID)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	return r.getOne(ctx, `d.id = $1`, id)
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	return r.getOne(ctx, `d.user_id = $1`, userID)
}

// Update never touches code.
func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET full_name=$2, qualification=$3, experience=$4, status=$5, department_id=$6
		WHERE id = $1`,
		d.ID, d.FullName, d.Qualification, d.Experience, d.Status, d.DepartmentID)
	return err
}

func (r *doctorRepoPG) UpdateStatus(ctx context.Context, id int64, status DoctorStatus) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE doctors SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, doctorSelect+` ORDER BY d.full_name, d.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
