package auth

import (
	"context"
)

// Actor is the authenticated caller of a request. PatientID and DoctorID are
// zero when the user has no profile of that kind.
type Actor struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Blocked   bool   `json:"is_blocked"`
	PatientID int64  `json:"patient_id,omitempty"`
	DoctorID  int64  `json:"doctor_id,omitempty"`
}

func (a *Actor) Is(role Role) bool {
	return a != nil && a.Role == role
}

// ActorResolver loads the current state of a user, including the blocked flag
// and profile ids. It is called on every authenticated request so that
// blacklisting takes effect without waiting for token expiry.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID int64) (*Actor, error)
}

const (
	ActorKey contextKey = "actor"
	TokenKey contextKey = "token_claims"
)

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ActorKey, a)
}

// ActorFromContext returns the request actor, or nil for anonymous requests.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(ActorKey).(*Actor)
	return a
}

// ClaimsFromContext returns the validated token claims of the request.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(TokenKey).(*Claims)
	return c
}
