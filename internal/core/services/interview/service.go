package interview

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

// IInterviewService drives one practice interview from start to evaluation.
// Every operation is scoped to the owning user; sessions of other users are
// reported as errs.ErrNotFound.
type IInterviewService interface {
	StartSession(ctx context.Context, userID uuid.UUID, problemID string, language string) (*domain.InterviewSession, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.InterviewSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.InterviewSession, error)

	// SaveDraft buffers an editor snapshot; FlushDrafts persists buffered snapshots.
	SaveDraft(ctx context.Context, userID, sessionID uuid.UUID, code string, elapsedSeconds int64) (*domain.Draft, error)
	FlushDrafts(ctx context.Context) (int, error)

	RunTests(ctx context.Context, userID, sessionID uuid.UUID, code string) (*domain.TestRunSummary, error)
	Chat(ctx context.Context, userID, sessionID uuid.UUID, message string) (*domain.ChatMessage, error)
	Complete(ctx context.Context, userID, sessionID uuid.UUID, code string, elapsedSeconds int64) (*domain.InterviewSession, error)
}
