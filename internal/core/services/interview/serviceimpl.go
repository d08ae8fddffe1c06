package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/core/services/evaluation"
	"gitlab.com/codeprep.net/internal/core/services/execution"
	"gitlab.com/codeprep.net/internal/core/services/problem"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ IInterviewService = (*InterviewService)(nil)

const maxChatHistory = 30

const interviewerPreamble = `You are a friendly but rigorous technical interviewer running a live coding interview.
Ask clarifying questions, give hints only when the candidate is stuck, and never write the full solution.
Keep replies short and conversational.`

// Dependencies of the interview service. Drafts, LLM and Events may be nil.
type Dependencies struct {
	Sessions   secondary.SessionRepository
	Drafts     secondary.DraftStore
	Problems   problem.IProblemService
	Execution  execution.IExecutionService
	Evaluation evaluation.IEvaluationService
	LLM        secondary.ChatCompleter
	Events     secondary.EventPublisher
	Logger     primary.Logger
}

type InterviewService struct {
	sessions   secondary.SessionRepository
	drafts     secondary.DraftStore
	problems   problem.IProblemService
	execution  execution.IExecutionService
	evaluation evaluation.IEvaluationService
	llm        secondary.ChatCompleter
	events     secondary.EventPublisher
	logger     primary.Logger
	now        func() time.Time
}

func NewInterviewService(deps Dependencies) *InterviewService {
	return &InterviewService{
		sessions:   deps.Sessions,
		drafts:     deps.Drafts,
		problems:   deps.Problems,
		execution:  deps.Execution,
		evaluation: deps.Evaluation,
		llm:        deps.LLM,
		events:     deps.Events,
		logger:     deps.Logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *InterviewService) StartSession(ctx context.Context, userID uuid.UUID, problemID string, language string) (*domain.InterviewSession, error) {
	lang, ok := domain.ParseLanguage(language)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedLanguage, language)
	}
	p, err := s.problems.LoadProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}

	session := domain.NewInterviewSession(userID, p, lang)
	session.Conversation = append(session.Conversation, domain.ChatMessage{
		Role:      domain.ChatRoleInterviewer,
		Content:   fmt.Sprintf("Hi! Today we'll work on %q. Take a moment to read the problem, then walk me through your first ideas.", p.Title),
		CreatedAt: session.CreatedAt,
	})
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Interview session started", "sessionId", session.ID, "userId", userID, "problemId", p.ID, "language", lang)
	return session, nil
}

func (s *InterviewService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.InterviewSession, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return redacted(session), nil
}

func (s *InterviewService) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.InterviewSession, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for i, session := range sessions {
		sessions[i] = redacted(session)
	}
	return sessions, nil
}

func (s *InterviewService) SaveDraft(ctx context.Context, userID, sessionID uuid.UUID, code string, elapsedSeconds int64) (*domain.Draft, error) {
	session, err := s.loadActive(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	draft := &domain.Draft{
		SessionID:      session.ID,
		Code:           code,
		ElapsedSeconds: maxInt64(elapsedSeconds, session.ElapsedSeconds),
		SavedAt:        s.now(),
	}
	if s.drafts == nil {
		if err := s.sessions.SaveDraft(ctx, draft); err != nil {
			return nil, err
		}
		return draft, nil
	}
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// FlushDrafts writes every dirty draft to the session store and returns how
// many were persisted. A failing session does not stop the others.
func (s *InterviewService) FlushDrafts(ctx context.Context) (int, error) {
	if s.drafts == nil {
		return 0, nil
	}
	ids, err := s.drafts.Dirty(ctx)
	if err != nil {
		return 0, err
	}

	flushed := 0
	var errList []error
	for _, id := range ids {
		if ctx.Err() != nil {
			return flushed, ctx.Err()
		}
		draft, err := s.drafts.Get(ctx, id)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		if draft == nil {
			// expired before it could be flushed
			_ = s.drafts.Delete(ctx, id)
			continue
		}
		if err := s.sessions.SaveDraft(ctx, draft); err != nil {
			errList = append(errList, err)
			continue
		}
		if err := s.drafts.MarkFlushed(ctx, draft); err != nil {
			errList = append(errList, err)
			continue
		}
		flushed++
	}

	if flushed > 0 {
		s.logger.Debug("Drafts flushed", "count", flushed)
	}
	return flushed, errors.Join(errList...)
}

func (s *InterviewService) RunTests(ctx context.Context, userID, sessionID uuid.UUID, code string) (*domain.TestRunSummary, error) {
	session, err := s.loadActive(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := s.problems.LoadProblem(ctx, session.ProblemID)
	if err != nil {
		return nil, err
	}
	if code != "" {
		session.Code = code
	}

	summary, err := s.runSuite(ctx, session, p)
	if err != nil {
		return nil, err
	}

	session.TestResults = summary
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Tests run", "sessionId", session.ID, "passed", summary.Passed, "total", summary.Total)
	out := summary.Redacted()
	return &out, nil
}

func (s *InterviewService) Chat(ctx context.Context, userID, sessionID uuid.UUID, message string) (*domain.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", errs.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, errs.ErrLLMUnavailable
	}
	session, err := s.loadActive(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := s.problems.LoadProblem(ctx, session.ProblemID)
	if err != nil {
		return nil, err
	}

	session.Conversation = append(session.Conversation, domain.ChatMessage{
		Role:      domain.ChatRoleCandidate,
		Content:   message,
		CreatedAt: s.now(),
	})

	content, err := s.llm.Complete(ctx, interviewerPrompt(p, session))
	if err != nil {
		s.logger.Error("Failed to get interviewer reply", "sessionId", session.ID, "error", err)
		return nil, fmt.Errorf("failed to get interviewer reply: %w", err)
	}

	reply := domain.ChatMessage{
		Role:      domain.ChatRoleInterviewer,
		Content:   content,
		CreatedAt: s.now(),
	}
	session.Conversation = append(session.Conversation, reply)
	session.UpdatedAt = reply.CreatedAt
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Complete runs the final test pass, scores the session and closes it.
// A judge outage does not block completion; the last stored test results
// are used instead.
func (s *InterviewService) Complete(ctx context.Context, userID, sessionID uuid.UUID, code string, elapsedSeconds int64) (*domain.InterviewSession, error) {
	session, err := s.loadActive(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := s.problems.LoadProblem(ctx, session.ProblemID)
	if err != nil {
		return nil, err
	}
	if code != "" {
		session.Code = code
	}
	session.ElapsedSeconds = maxInt64(elapsedSeconds, session.ElapsedSeconds)

	summary, err := s.runSuite(ctx, session, p)
	switch {
	case err == nil:
		session.TestResults = summary
	case errors.Is(err, errs.ErrServiceUnavailable):
		s.logger.Warn("Judge unavailable, completing with previous test results", "sessionId", session.ID)
	default:
		return nil, err
	}

	ectx := domain.EvaluationContext{TimeTakenMinutes: float64(session.ElapsedSeconds) / 60}
	if session.TestResults != nil {
		ectx.TestsPassed = session.TestResults.Passed
		ectx.TestsTotal = session.TestResults.Total
	}
	eval := s.evaluation.Evaluate(ctx, evaluation.EvaluationRequest{
		Problem:      p,
		Language:     session.Language,
		Code:         session.Code,
		Conversation: session.Conversation,
		Context:      ectx,
	})

	now := s.now()
	session.Evaluation = &eval
	session.Status = domain.SessionStatusCompleted
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, session.ID); err != nil {
			s.logger.Warn("Failed to delete draft", "sessionId", session.ID, "error", err)
		}
	}

	s.publishCompleted(ctx, session, p)
	s.logger.Info("Interview session completed",
		"sessionId", session.ID,
		"total", eval.Score.Total,
		"grade", eval.Score.Grade,
		"tier", eval.Tier)
	return redacted(session), nil
}

func (s *InterviewService) publishCompleted(ctx context.Context, session *domain.InterviewSession, p *domain.Problem) {
	if s.events == nil {
		return
	}
	event := &domain.InterviewCompletedEvent{
		SessionID:  session.ID,
		UserID:     session.UserID,
		ProblemID:  session.ProblemID,
		Difficulty: p.Difficulty,
		Total:      session.Evaluation.Score.Total,
		Grade:      session.Evaluation.Score.Grade,
		OccurredAt: *session.CompletedAt,
	}
	if err := s.events.PublishInterviewCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish interview completed event", "sessionId", session.ID, "error", err)
	}
}

func (s *InterviewService) runSuite(ctx context.Context, session *domain.InterviewSession, p *domain.Problem) (*domain.TestRunSummary, error) {
	outcomes, err := s.execution.RunTestSuite(ctx, session.Code, session.Language, p.TestCases)
	if err != nil {
		return nil, err
	}
	summary := domain.NewTestRunSummary(outcomes)
	return &summary, nil
}

// load fetches a session owned by userID and overlays a newer draft.
func (s *InterviewService) load(ctx context.Context, userID, sessionID uuid.UUID) (*domain.InterviewSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, errs.ErrNotFound)
	}

	if s.drafts != nil && session.Status == domain.SessionStatusActive {
		draft, err := s.drafts.Get(ctx, sessionID)
		if err != nil {
			s.logger.Warn("Failed to read draft", "sessionId", sessionID, "error", err)
		} else if draft != nil && draft.SavedAt.After(session.UpdatedAt) {
			session.Code = draft.Code
			session.ElapsedSeconds = maxInt64(draft.ElapsedSeconds, session.ElapsedSeconds)
		}
	}
	return session, nil
}

func (s *InterviewService) loadActive(ctx context.Context, userID, sessionID uuid.UUID) (*domain.InterviewSession, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusActive {
		return nil, errs.ErrSessionCompleted
	}
	return session, nil
}

func interviewerPrompt(p *domain.Problem, session *domain.InterviewSession) []domain.ChatMessage {
	system := fmt.Sprintf("%s\n\nProblem: %s (%s)\n%s\n\nCandidate's current %s code:\n```\n%s\n```",
		interviewerPreamble, p.Title, p.Difficulty, p.Description, session.Language, session.Code)

	history := session.Conversation
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	messages := make([]domain.ChatMessage, 0, len(history)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.ChatRoleSystem, Content: system})
	return append(messages, history...)
}

// redacted returns a copy safe to hand to the candidate.
func redacted(session *domain.InterviewSession) *domain.InterviewSession {
	out := *session
	if session.TestResults != nil {
		summary := session.TestResults.Redacted()
		out.TestResults = &summary
	}
	return &out
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
