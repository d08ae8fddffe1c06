package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/global/logger"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ ILocalAuthService = &localAuthService{}

type localAuthService struct {
	userPort    secondary.UserPort
	jwtProvider primary.JWTService
}

func NewLocalAuthService(
	userPort secondary.UserPort,
	jwtProvider primary.JWTService,
) ILocalAuthService {
	return &localAuthService{
		userPort:    userPort,
		jwtProvider: jwtProvider,
	}
}

func (g localAuthService) ProviderName() domain.Provider {
	return domain.ProviderLocal
}

func (g localAuthService) Register(ctx context.Context, credentials domain.Credentials) (string, error) {
	userName := strings.TrimSpace(credentials.UserName)
	existing, err := g.userPort.GetByUserName(ctx, userName)
	if err != nil {
		logger.Error("Failed to look up user", "userName", userName, "error", err)
		return "", errs.InternalError
	}
	if existing != nil {
		return "", errs.UserNameTaken
	}

	hash, err := g.jwtProvider.EncryptPassword(ctx, credentials.Password)
	if err != nil {
		return "", errs.InternalError
	}

	user := &domain.Users{
		ID:           uuid.New(),
		UserName:     userName,
		PasswordHash: &hash,
		AuthProvider: string(domain.ProviderLocal),
	}
	if credentials.Email != "" {
		email := credentials.Email
		user.Email = &email
	}
	if err := g.userPort.Create(ctx, user); err != nil {
		logger.Error("Failed to create user", "userName", userName, "error", err)
		return "", errs.FailedToCreateUser
	}

	logger.Info("User registered", "userId", user.ID, "provider", domain.ProviderLocal)
	return issueToken(ctx, g.jwtProvider, user)
}

func (g localAuthService) Login(ctx context.Context, credentials domain.Credentials) (string, error) {
	usr, err := g.userPort.GetByUserName(ctx, strings.TrimSpace(credentials.UserName))
	if err != nil {
		logger.Error("Failed to look up user", "userName", credentials.UserName, "error", err)
		return "", errs.InternalError
	}
	if usr == nil || usr.PasswordHash == nil {
		return "", errs.InvalidCredentials
	}
	valid, err := g.jwtProvider.VerifyPassword(ctx, *usr.PasswordHash, credentials.Password)
	if err != nil || !valid {
		return "", errs.InvalidCredentials
	}

	return issueToken(ctx, g.jwtProvider, usr)
}
