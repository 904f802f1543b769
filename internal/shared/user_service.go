package shared

import (
	"context"

	"github.com/google/uuid"
)

// TokenSubject is the user data embedded into tokens.
type TokenSubject interface {
	GetID() uuid.UUID
	GetIsStaff() bool
}

// UserProvider resolves token subjects. Implemented by the user service; auth
// depends on it to re-read staff status on refresh.
type UserProvider interface {
	GetTokenSubject(ctx context.Context, id uuid.UUID) (TokenSubject, error)
}
