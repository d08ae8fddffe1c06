package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ IEvaluationService = (*EvaluationService)(nil)

const maxTranscriptMessages = 30

const evaluatorPreamble = `You are a senior software engineer evaluating a candidate's coding interview.
Review the problem, the candidate's final code, the test results and the interview transcript.
Score the candidate in five categories and reply with your assessment.

Your reply MUST contain exactly one line in this format:
SCORE: Code Quality: X/30, Algorithm Efficiency: Y/25, Problem Understanding: Z/20, Implementation: W/15, Communication: V/10

and end with one line in this format:
FINAL NOTE: <one or two encouraging sentences summarizing the performance>`

// EvaluationService implements IEvaluationService
type EvaluationService struct {
	llm     secondary.ChatCompleter
	logger  primary.Logger
	metrics secondary.MetricsRecorder
}

// NewEvaluationService creates a new evaluation service. A nil llm makes every
// evaluation fall back to the default score.
func NewEvaluationService(llm secondary.ChatCompleter, logger primary.Logger, metrics secondary.MetricsRecorder) *EvaluationService {
	if metrics == nil {
		metrics = secondary.NopMetrics{}
	}
	return &EvaluationService{
		llm:     llm,
		logger:  logger,
		metrics: metrics,
	}
}

// Evaluate generates a review and scores it
func (s *EvaluationService) Evaluate(ctx context.Context, req EvaluationRequest) domain.Evaluation {
	difficulty := domain.DifficultyEasy
	if req.Problem != nil {
		difficulty = req.Problem.Difficulty
	}

	if s.llm == nil {
		s.logger.Warn("No language model configured, using default evaluation")
		return s.record(DefaultEvaluation(difficulty, req.Context))
	}

	start := time.Now()
	text, err := s.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: evaluatorPreamble},
		{Role: domain.ChatRoleCandidate, Content: buildEvaluationPrompt(req)},
	})
	if err != nil {
		s.logger.Error("Failed to generate evaluation", "error", err)
		return s.record(DefaultEvaluation(difficulty, req.Context))
	}

	eval := ExtractScore(text, difficulty, req.Context)
	s.logger.Info("Evaluation generated",
		"tier", eval.Tier,
		"total", eval.Score.Total,
		"grade", eval.Score.Grade,
		"duration", time.Since(start))
	return s.record(eval)
}

// ExtractScore scores text without calling the model
func (s *EvaluationService) ExtractScore(text string, difficulty domain.Difficulty, ectx domain.EvaluationContext) domain.Evaluation {
	return s.record(ExtractScore(text, difficulty, ectx))
}

func (s *EvaluationService) record(eval domain.Evaluation) domain.Evaluation {
	s.metrics.ObserveExtraction(eval.Tier, eval.Score.Grade)
	return eval
}

func buildEvaluationPrompt(req EvaluationRequest) string {
	var b strings.Builder
	if req.Problem != nil {
		fmt.Fprintf(&b, "Problem: %s (%s)\n%s\n\n", req.Problem.Title, req.Problem.Difficulty, req.Problem.Description)
	}
	fmt.Fprintf(&b, "Language: %s\n\nFinal code:\n```\n%s\n```\n\n", req.Language, req.Code)
	fmt.Fprintf(&b, "Test results: %d/%d passed\n", req.Context.TestsPassed, req.Context.TestsTotal)
	fmt.Fprintf(&b, "Time taken: %.0f minutes\n", req.Context.TimeTakenMinutes)

	transcript := req.Conversation
	if len(transcript) > maxTranscriptMessages {
		transcript = transcript[len(transcript)-maxTranscriptMessages:]
	}
	if len(transcript) > 0 {
		b.WriteString("\nInterview transcript:\n")
		for _, m := range transcript {
			speaker := "Candidate"
			if m.Role == domain.ChatRoleInterviewer {
				speaker = "Interviewer"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
		}
	}
	return b.String()
}
