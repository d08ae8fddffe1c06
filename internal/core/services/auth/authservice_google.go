package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/global/logger"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ IAuthService = &googleAuthService{}

type googleAuthService struct {
	userPort    secondary.UserPort
	jwtProvider primary.JWTService
	Config      *config.GGAuthConfig
}

func NewGoogleAuthService(userPort secondary.UserPort, jwtProvider primary.JWTService, Config *config.GGAuthConfig) IAuthService {
	return &googleAuthService{
		userPort:    userPort,
		jwtProvider: jwtProvider,
		Config:      Config,
	}
}

func (g googleAuthService) ProviderName() domain.Provider {
	return domain.ProviderGoogle
}

// Login signs in a Google account, creating the user on first login.
func (g googleAuthService) Login(ctx context.Context, credentials domain.Credentials) (string, error) {
	if credentials.GoogleID == "" {
		return "", errs.InvalidCredentials
	}
	if credentials.Email == "" {
		return "", errs.EmailRequired
	}

	localPart, domainPart, _ := strings.Cut(strings.ToLower(credentials.Email), "@")
	if g.Config.AllowedDomain != "" && domainPart != strings.ToLower(g.Config.AllowedDomain) {
		return "", errs.DomainNotAllowed
	}

	usr, err := g.userPort.GetByGoogleID(ctx, credentials.GoogleID)
	if err != nil {
		logger.Error("Failed to look up google user", "error", err)
		return "", errs.InternalError
	}
	if usr != nil {
		return issueToken(ctx, g.jwtProvider, usr)
	}

	userName, err := g.availableUserName(ctx, localPart)
	if err != nil {
		return "", err
	}
	googleID, email := credentials.GoogleID, credentials.Email
	usr = &domain.Users{
		ID:           uuid.New(),
		UserName:     userName,
		Email:        &email,
		AuthProvider: string(domain.ProviderGoogle),
		GoogleID:     &googleID,
	}
	if err := g.userPort.Create(ctx, usr); err != nil {
		logger.Error("Failed to create google user", "error", err)
		return "", errs.FailedToCreateUser
	}

	logger.Info("User registered", "userId", usr.ID, "provider", domain.ProviderGoogle)
	return issueToken(ctx, g.jwtProvider, usr)
}

// availableUserName derives a user name from the email, suffixing it when
// the plain form is already taken.
func (g googleAuthService) availableUserName(ctx context.Context, base string) (string, error) {
	existing, err := g.userPort.GetByUserName(ctx, base)
	if err != nil {
		return "", errs.InternalError
	}
	if existing == nil {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}
