package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/logger"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
	"github.com/Varun5711/expense-tracker/internal/respond"
)

type contextKey string

const IdentityKey contextKey = "identity"

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (usermodel.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	log      *logger.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		log:      log,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respond.Error(w, r, m.log, apperr.Unauthorized("Authorization header required"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respond.Error(w, r, m.log, apperr.Unauthorized("Invalid authorization header"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		identity, err := m.verifier.Verify(ctx, strings.TrimSpace(token))
		if err != nil {
			if apperr.Is(err, apperr.KindUnauthorized) {
				m.log.Debug("Rejected token: %v", err)
			}
			respond.Error(w, r, m.log, err)
			return
		}

		ctx = context.WithValue(r.Context(), IdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetIdentity(ctx context.Context) (usermodel.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(usermodel.Identity)
	return identity, ok
}
