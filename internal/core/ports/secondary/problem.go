package secondary

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

type ProblemCatalog interface {
	List(ctx context.Context) ([]*domain.Problem, error)
	// Get returns nil when the problem does not exist
	Get(ctx context.Context, id string) (*domain.Problem, error)
}
