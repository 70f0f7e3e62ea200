package common

import (
	"context"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
)

type contextKey string

const authUserContextKey contextKey = "authUser"

// AuthenticatedUser represents the JWT-derived principal.
type AuthenticatedUser struct {
	ID       string           `json:"id"`
	Name     string           `json:"name,omitempty"`
	Username string           `json:"username,omitempty"`
	Role     application.Role `json:"role"`
}

// Principal はアプリケーション層へ渡す操作者情報に変換する。
func (u AuthenticatedUser) Principal() application.Principal {
	name := u.Name
	if name == "" {
		name = u.Username
	}
	return application.Principal{ID: u.ID, Name: name, Role: u.Role}
}

// ContextWithUser stores the authenticated user into context.
func ContextWithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(AuthenticatedUser)
	return user, ok
}
