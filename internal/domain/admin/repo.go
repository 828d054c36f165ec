package admin

import (
	"context"
)

// DepartmentRepository defines the persistence interface for departments.
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id int64) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	// NameTaken reports whether name belongs to a department other than exceptID.
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
	Update(ctx context.Context, d *Department) error
	List(ctx context.Context, limit, offset int) ([]*Department, int, error)
}

// StatsRepository computes dashboard counts.
type StatsRepository interface {
	Counts(ctx context.Context) (*Stats, error)
}
