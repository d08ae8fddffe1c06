package problem

import (
	"context"
	"fmt"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ IProblemService = (*ProblemService)(nil)

type ProblemService struct {
	catalog secondary.ProblemCatalog
}

func NewProblemService(catalog secondary.ProblemCatalog) *ProblemService {
	return &ProblemService{catalog: catalog}
}

func (s *ProblemService) ListProblems(ctx context.Context, difficulty domain.Difficulty) ([]domain.Problem, error) {
	problems, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}

	out := make([]domain.Problem, 0, len(problems))
	for _, p := range problems {
		if difficulty != "" && p.Difficulty != difficulty {
			continue
		}
		out = append(out, p.Public())
	}
	return out, nil
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*domain.Problem, error) {
	p, err := s.LoadProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	public := p.Public()
	return &public, nil
}

func (s *ProblemService) LoadProblem(ctx context.Context, id string) (*domain.Problem, error) {
	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("problem %q: %w", id, errs.ErrNotFound)
	}
	return p, nil
}
