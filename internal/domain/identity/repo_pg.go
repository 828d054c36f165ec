package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homa/homa/internal/platform/apperr"
	"github.com/homa/homa/internal/platform/auth"
	"github.com/homa/homa/internal/platform/db"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, email, password_hash, role, is_blocked, created_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Blocked, &u.CreatedAt)
	return &u, err
}

func (r *userRepoPG) getOne(ctx context.Context, where string, arg interface{}) (*User, error) {
	u, err := r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, is_blocked)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		u.Email, u.PasswordHash, u.Role, u.Blocked).Scan(&u.ID, &u.CreatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("email already registered")
	}
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *userRepoPG) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, exceptID).Scan(&taken)
	return taken, err
}

func (r *userRepoPG) UpdateEmail(ctx context.Context, id int64, email string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE users SET email = $2 WHERE id = $1`, id, email)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("email already registered")
	}
	return err
}

func (r *userRepoPG) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE users SET is_blocked = $2 WHERE id = $1`, id, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *userRepoPG) CountByRole(ctx context.Context, role auth.Role) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, err
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *userRepoPG) GetActor(ctx context.Context, id int64) (*auth.Actor, error) {
	var a auth.Actor
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT u.id, u.email, u.role, u.is_blocked, COALESCE(p.id, 0), COALESCE(d.id, 0)
		FROM users u
		LEFT JOIN patients p ON p.user_id = u.id
		LEFT JOIN doctors d ON d.user_id = u.id
		WHERE u.id = $1`, id).
		Scan(&a.UserID, &a.Email, &a.Role, &a.Blocked, &a.PatientID, &a.DoctorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	return &a, nil
}
