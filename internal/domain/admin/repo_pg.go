package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/db"
)

// =========== Department Repository ===========

type deptRepoPG struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepo(pool *pgxpool.Pool) DepartmentRepository {
	return &deptRepoPG{pool: pool}
}

func (r *deptRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const deptCols = `id, name, description, is_active`

func (r *deptRepoPG) scanDept(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.IsActive)
	return &d, err
}

func (r *deptRepoPG) getOne(ctx context.Context, where string, arg interface{}) (*Department, error) {
	d, err := r.scanDept(r.conn(ctx).QueryRow(ctx, `SELECT `+deptCols+` FROM departments WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("department not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get department: %w", err)
	}
	return d, nil
}

func (r *deptRepoPG) Create(ctx context.Context, d *Department) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO departments (name, description, is_active)
		VALUES ($1, $2, $3)
		RETURNING id`,
		d.Name, d.Description, d.IsActive).Scan(&d.ID)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("department %q already exists", d.Name)
	}
	return err
}

func (r *deptRepoPG) GetByID(ctx context.Context, id int64) (*Department, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *deptRepoPG) GetByName(ctx context.Context, name string) (*Department, error) {
	return r.getOne(ctx, `name = $1`, name)
}

func (r *deptRepoPG) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM departments WHERE name = $1 AND id <> $2)`, name, exceptID).Scan(&taken)
	return taken, err
}

func (r *deptRepoPG) Update(ctx context.Context, d *Department) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE departments SET name = $2, description = $3, is_active = $4
		WHERE id = $1`,
		d.ID, d.Name, d.Description, d.IsActive)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("department %q already exists", d.Name)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("department not found")
	}
	return nil
}

func (r *deptRepoPG) List(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+deptCols+` FROM departments ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		d, err := r.scanDept(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// =========== Stats Repository ===========

type statsRepoPG struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) StatsRepository {
	return &statsRepoPG{pool: pool}
}

func (r *statsRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *statsRepoPG) Counts(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_blocked),
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM doctors),
			(SELECT COUNT(*) FROM doctors WHERE status = 'available'),
			(SELECT COUNT(*) FROM departments),
			(SELECT COUNT(*) FROM appointments),
			(SELECT COUNT(*) FROM appointments WHERE status = 'booked'),
			(SELECT COUNT(*) FROM treatments)`).Scan(
		&s.Users, &s.BlockedUsers, &s.Patients, &s.Doctors, &s.AvailableDoctors,
		&s.Departments, &s.Appointments, &s.BookedAppointments, &s.Treatments,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &s, nil
}
