package auth

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type contextKey struct{}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns nil for unauthenticated requests.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(contextKey{}).(*model.User)
	return u
}

// UserID is the audit identity of the caller, "system" for internal callers.
func UserID(ctx context.Context) string {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return "system"
}
