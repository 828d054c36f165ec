package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homa/homa/internal/domain/profile"
	"github.com/homa/homa/internal/platform/db"
)

type searchRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &searchRepoPG{pool: pool}
}

func (r *searchRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *searchRepoPG) Users(ctx context.Context, pattern string, limit int) ([]*UserHit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT u.id, u.email, u.role, u.is_blocked,
			COALESCE(p.id, 0), COALESCE(p.full_name, ''), COALESCE(p.phone, ''),
			COALESCE(d.id, 0), COALESCE(d.full_name, '')
		FROM users u
		LEFT OUTER JOIN patients p ON p.user_id = u.id
		LEFT OUTER JOIN doctors d ON d.user_id = u.id
		WHERE u.email ILIKE $1
			OR p.full_name ILIKE $1
			OR p.phone ILIKE $1
			OR d.full_name ILIKE $1
		ORDER BY u.id
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var hits []*UserHit
	for rows.Next() {
		var h UserHit
		if err := rows.Scan(&h.UserID, &h.Email, &h.Role, &h.Blocked,
			&h.PatientID, &h.PatientName, &h.Phone, &h.DoctorID, &h.DoctorName); err != nil {
			return nil, err
		}
		hits = append(hits, &h)
	}
	return hits, rows.Err()
}

func (r *searchRepoPG) Patients(ctx context.Context, namePattern string, id int64, phonePrefix string, limit int) ([]*profile.Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, user_id, full_name, gender, phone, address, blood_group, age
		FROM patients
		WHERE full_name ILIKE $1 OR id = $2 OR phone LIKE $3
		ORDER BY full_name, id
		LIMIT $4`, namePattern, id, phonePrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	defer rows.Close()

	var items []*profile.Patient
	for rows.Next() {
		var p profile.Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.Gender, &p.Phone,
			&p.Address, &p.BloodGroup, &p.Age); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *searchRepoPG) AvailableDoctors(ctx context.Context, f DoctorFilter) ([]*profile.Doctor, error) {
	where := []string{`d.status = $1`, `d.full_name ILIKE $2`}
	args := []interface{}{profile.DoctorAvailable, containsPattern(f.Name)}
	if f.Department != "" {
		args = append(args, f.Department)
		where = append(where, fmt.Sprintf("dep.name = $%d", len(args)))
	}
	if f.DepartmentID != 0 {
		args = append(args, f.DepartmentID)
		where = append(where, fmt.Sprintf("d.department_id = $%d", len(args)))
	}
	args = append(args, f.Limit)

	query := `SELECT d.id, d.code, d.user_id, d.full_name, d.qualification, d.experience,
		d.status, d.department_id, dep.name, u.email
		FROM doctors d
		JOIN departments dep ON dep.id = d.department_id
		JOIN users u ON u.id = d.user_id
		WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY d.full_name, d.id LIMIT $%d", len(args))

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search doctors: %w", err)
	}
	defer rows.Close()

	var items []*profile.Doctor
	for rows.Next() {
		var d profile.Doctor
		if err := rows.Scan(&d.ID, &d.Code, &d.UserID, &d.FullName, &d.Qualification, &d.Experience,
			&d.Status, &d.DepartmentID, &d.DepartmentName, &d.Email); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *searchRepoPG) Departments(ctx context.Context) ([]*DepartmentOption, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name FROM departments WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DepartmentOption
	for rows.Next() {
		var o DepartmentOption
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		items = append(items, &o)
	}
	return items, rows.Err()
}
