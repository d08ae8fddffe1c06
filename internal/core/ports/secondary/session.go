package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

type SessionRepository interface {
	// Create inserts a new session
	Create(ctx context.Context, session *domain.InterviewSession) error

	// Get retrieves a session by ID, nil if it does not exist
	Get(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error)

	// ListByUser retrieves the sessions of a user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.InterviewSession, error)

	// Save updates every mutable column of a session
	Save(ctx context.Context, session *domain.InterviewSession) error

	// SaveDraft updates code and elapsed time only
	SaveDraft(ctx context.Context, draft *domain.Draft) error
}

// DraftStore buffers auto-saved editor snapshots between flushes.
type DraftStore interface {
	Put(ctx context.Context, draft *domain.Draft) error
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.Draft, error)
	// Dirty lists sessions with drafts not yet flushed
	Dirty(ctx context.Context) ([]uuid.UUID, error)
	// MarkFlushed clears the dirty flag unless a newer draft arrived after
	// the flushed one was read
	MarkFlushed(ctx context.Context, draft *domain.Draft) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
