package evaluation

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// EvaluationRequest describes one finished solution.
type EvaluationRequest struct {
	Problem      *domain.Problem
	Language     domain.Language
	Code         string
	Conversation []domain.ChatMessage
	Context      domain.EvaluationContext
}

// IEvaluationService scores solutions. Scoring never fails.
type IEvaluationService interface {
	// Evaluate asks the language model for a review and extracts a score from it.
	Evaluate(ctx context.Context, req EvaluationRequest) domain.Evaluation

	// ExtractScore scores already generated evaluation text.
	ExtractScore(text string, difficulty domain.Difficulty, ectx domain.EvaluationContext) domain.Evaluation
}
