package problem

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

type IProblemService interface {
	// ListProblems returns public views, optionally filtered by difficulty
	ListProblems(ctx context.Context, difficulty domain.Difficulty) ([]domain.Problem, error)

	// GetProblem returns the public view of one problem or errs.ErrNotFound
	GetProblem(ctx context.Context, id string) (*domain.Problem, error)

	// LoadProblem returns the full problem including hidden test cases
	LoadProblem(ctx context.Context, id string) (*domain.Problem, error)
}
