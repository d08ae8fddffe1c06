package userrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	querybuilder "gitlab.com/codeprep.net/internal/utils"
)

var _ secondary.UserPort = &userRepo{}

type userRepo struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

func New(db *sqlx.DB, logger primary.Logger, schema string) secondary.UserPort {
	return &userRepo{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func (u userRepo) Create(ctx context.Context, user *domain.Users) error {
	userTbl := domain.GetUserTable()
	query, args, err := querybuilder.NewQueryBuilder(u.schema).Insert(
		userTbl.ID,
		userTbl.UserName, userTbl.Email, userTbl.PasswordHash,
		userTbl.AuthProvider, userTbl.GoogleID,
	).
		Into(userTbl.GetTableName()).
		Values(
			user.ID,
			user.UserName, user.Email, user.PasswordHash,
			user.AuthProvider, user.GoogleID,
		).
		Build()
	if err != nil {
		return err
	}

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	if _, err := u.db.ExecContext(ctx, query, args...); err != nil {
		u.logger.Error("Failed to create user", "userName", user.UserName, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u userRepo) GetByGoogleID(ctx context.Context, googleID string) (*domain.Users, error) {
	userTbl := domain.GetUserTable()
	return u.getOne(ctx, fmt.Sprintf("%s = ?", userTbl.GoogleID), googleID)
}

func (u userRepo) GetByUserName(ctx context.Context, userName string) (*domain.Users, error) {
	userTbl := domain.GetUserTable()
	return u.getOne(ctx, fmt.Sprintf("%s = ?", userTbl.UserName), userName)
}

func (u userRepo) getOne(ctx context.Context, clause string, arg interface{}) (*domain.Users, error) {
	userTbl := domain.GetUserTable()
	query, args, err := querybuilder.NewQueryBuilder(u.schema).
		Select(
			userTbl.ID,
			userTbl.UserName, userTbl.Email, userTbl.PasswordHash,
			userTbl.AuthProvider, userTbl.GoogleID,
		).
		From(userTbl.GetTableName()).
		Where(clause, arg).
		Limit(1).
		Build()
	if err != nil {
		return nil, err
	}

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	var user domain.Users
	err = u.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
