package identity

import (
	"context"

	"github.com/homa/homa/internal/platform/auth"
)

// UserRepository defines the persistence interface for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// EmailTaken reports whether email belongs to a user other than exceptID.
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	CountByRole(ctx context.Context, role auth.Role) (int, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	// GetActor loads the user together with the ids of any profiles.
	GetActor(ctx context.Context, id int64) (*auth.Actor, error)
}
