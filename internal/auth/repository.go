package auth

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// UserRepository returns nil, nil when no user matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}
