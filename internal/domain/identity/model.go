package identity

import (
	"time"

	"github.com/homa/homa/internal/platform/auth"
)

// User is an account that can log in. Exactly one role per user.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         auth.Role `db:"role" json:"role"`
	Blocked      bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RegisterRequest is the patient self-registration form.
type RegisterRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	FullName   string `json:"full_name" form:"full_name"`
	Gender     string `json:"gender" form:"gender"`
	Phone      string `json:"phone" form:"phone"`
	Address    string `json:"address" form:"address"`
	BloodGroup string `json:"blood_group" form:"blood_group"`
	Age        int    `json:"age" form:"age"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	*auth.IssuedToken
	User *User `json:"user"`
}
