package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

type IAuthService interface {
	ProviderName() domain.Provider
	Login(ctx context.Context, credentials domain.Credentials) (string, error)
}

// ILocalAuthService also creates password accounts.
type ILocalAuthService interface {
	IAuthService
	Register(ctx context.Context, credentials domain.Credentials) (string, error)
}

// issueToken signs an HS256 token whose subject is the user id.
func issueToken(ctx context.Context, jwtProvider primary.JWTService, user *domain.Users) (string, error) {
	claims := map[string]interface{}{
		"sub":      user.ID.String(),
		"username": user.UserName,
	}
	token, err := jwtProvider.GenerateTokenHMAC(ctx, jwt.SigningMethodHS256.Name, claims)
	if err != nil {
		return "", errs.GeneratingToken
	}
	return token, nil
}
