package service

import (
	"context"
	"fmt"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/auth"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
	"github.com/Varun5711/expense-tracker/internal/storage"
)

// SessionVerifier turns a bearer token back into the identity it was issued for.
type SessionVerifier struct {
	users      storage.UserStore
	jwtManager *auth.JWTManager
}

func NewSessionVerifier(users storage.UserStore, jwtManager *auth.JWTManager) *SessionVerifier {
	return &SessionVerifier{
		users:      users,
		jwtManager: jwtManager,
	}
}

func (v *SessionVerifier) Verify(ctx context.Context, token string) (usermodel.Identity, error) {
	claims, err := v.jwtManager.ValidateToken(token)
	if err != nil {
		return usermodel.Identity{}, &apperr.Error{
			Kind:    apperr.KindUnauthorized,
			Message: "Invalid or expired token",
			Err:     err,
		}
	}

	user, err := v.users.GetUserByID(ctx, claims.UserID())
	if err != nil {
		return usermodel.Identity{}, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if user == nil {
		return usermodel.Identity{}, apperr.Unauthorized("User no longer exists")
	}

	return user.Identity(), nil
}
