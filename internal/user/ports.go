package user

import (
	"context"
)

type Repository interface {
	// Ensure returns the user with the given email, creating it with role
	// when absent. An existing user's role is left as is.
	Ensure(ctx context.Context, email, role string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
