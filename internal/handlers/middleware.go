package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
)

type contextKey string

const userIDKey contextKey = "userID"

type MiddlewareProvider struct {
	jwtService primary.JWTService
}

func New(jwtService primary.JWTService) *MiddlewareProvider {
	return &MiddlewareProvider{
		jwtService: jwtService,
	}
}

// JWTMiddleware rejects requests without a valid bearer token and stores the
// token subject as the user id.
func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ResponseError(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		ok, err := m.jwtService.VerifyTokenHMAC(r.Context(), tokenString, jwt.SigningMethodHS256.Name)
		if err != nil || !ok {
			ResponseError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		payload, err := m.jwtService.DecodeTokenPayload(r.Context(), tokenString)
		if err != nil {
			ResponseError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID, err := uuid.Parse(payload.Subject)
		if err != nil {
			ResponseError(w, "Invalid token subject", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
