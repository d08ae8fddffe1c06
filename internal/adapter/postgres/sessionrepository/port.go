// Package sessionrepository stores interview sessions in PostgreSQL.
package sessionrepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	querybuilder "gitlab.com/codeprep.net/internal/utils"
)

var _ secondary.SessionRepository = (*SessionRepository)(nil)

const defaultListLimit = 50

// sessionRow mirrors interview_sessions; json columns stay raw until decoded.
type sessionRow struct {
	ID             uuid.UUID    `db:"id"`
	UserID         uuid.UUID    `db:"user_id"`
	ProblemID      string       `db:"problem_id"`
	Language       string       `db:"language"`
	Code           string       `db:"code"`
	Conversation   []byte       `db:"conversation"`
	TestResults    []byte       `db:"test_results"`
	ElapsedSeconds int64        `db:"elapsed_seconds"`
	Status         string       `db:"status"`
	Evaluation     []byte       `db:"evaluation"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
	CompletedAt    sql.NullTime `db:"completed_at"`
}

// SessionRepository implements the SessionRepository interface with PostgreSQL
type SessionRepository struct {
	db     *sqlx.DB
	schema string
	logger primary.Logger
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB, schema string, logger primary.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		schema: schema,
		logger: logger,
	}
}

func columns() []string {
	tbl := domain.GetSessionTable()
	return []string{
		tbl.ID, tbl.UserID, tbl.ProblemID, tbl.Language, tbl.Code,
		tbl.Conversation, tbl.TestResults, tbl.ElapsedSeconds, tbl.Status,
		tbl.Evaluation, tbl.CreatedAt, tbl.UpdatedAt, tbl.CompletedAt,
	}
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, session *domain.InterviewSession) error {
	conversation, testResults, evaluation, err := encodeJSONColumns(session)
	if err != nil {
		return err
	}

	tbl := domain.GetSessionTable()
	query, args, err := querybuilder.NewQueryBuilder(r.schema).
		Insert(columns()...).
		Into(tbl.TableName()).
		Values(
			session.ID, session.UserID, session.ProblemID, session.Language, session.Code,
			conversation, testResults, session.ElapsedSeconds, session.Status,
			evaluation, session.CreatedAt, session.UpdatedAt, session.CompletedAt,
		).
		Build()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to create session", "sessionId", session.ID, "error", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID, nil if it does not exist
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error) {
	tbl := domain.GetSessionTable()
	query, args, err := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(tbl.ID+" = ?", id).
		Build()
	if err != nil {
		return nil, err
	}

	var row sessionRow
	if err := r.db.GetContext(ctx, &row, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get session", "sessionId", id, "error", err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return row.toDomain()
}

// ListByUser retrieves the sessions of a user, newest first
func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.InterviewSession, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	tbl := domain.GetSessionTable()
	query, args, err := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(tbl.UserID+" = ?", userID).
		OrderBy(tbl.CreatedAt, false).
		Limit(limit).
		Build()
	if err != nil {
		return nil, err
	}

	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to list sessions", "userId", userID, "error", err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*domain.InterviewSession, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// Save updates every mutable column of a session
func (r *SessionRepository) Save(ctx context.Context, session *domain.InterviewSession) error {
	conversation, testResults, evaluation, err := encodeJSONColumns(session)
	if err != nil {
		return err
	}

	tbl := domain.GetSessionTable()
	query, args, err := querybuilder.NewQueryBuilder(r.schema).
		Update(tbl.TableName()).
		Set(tbl.Code, session.Code).
		Set(tbl.Conversation, conversation).
		Set(tbl.TestResults, testResults).
		Set(tbl.ElapsedSeconds, session.ElapsedSeconds).
		Set(tbl.Status, session.Status).
		Set(tbl.Evaluation, evaluation).
		Set(tbl.UpdatedAt, session.UpdatedAt).
		Set(tbl.CompletedAt, session.CompletedAt).
		Where(tbl.ID+" = ?", session.ID).
		Build()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		r.logger.Error("Failed to save session", "sessionId", session.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", session.ID, sql.ErrNoRows)
	}
	return nil
}

// SaveDraft writes an auto-saved snapshot into an active session
func (r *SessionRepository) SaveDraft(ctx context.Context, draft *domain.Draft) error {
	tbl := domain.GetSessionTable()
	query, args, err := querybuilder.NewQueryBuilder(r.schema).
		Update(tbl.TableName()).
		Set(tbl.Code, draft.Code).
		Set(tbl.ElapsedSeconds, draft.ElapsedSeconds).
		Set(tbl.UpdatedAt, draft.SavedAt).
		Where(tbl.ID+" = ?", draft.SessionID).
		And(tbl.Status+" = ?", domain.SessionStatusActive).
		Build()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to save draft", "sessionId", draft.SessionID, "error", err)
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func encodeJSONColumns(s *domain.InterviewSession) (conversation, testResults, evaluation []byte, err error) {
	conv := s.Conversation
	if conv == nil {
		conv = []domain.ChatMessage{}
	}
	if conversation, err = json.Marshal(conv); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if s.TestResults != nil {
		if testResults, err = json.Marshal(s.TestResults); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal test results: %w", err)
		}
	}
	if s.Evaluation != nil {
		if evaluation, err = json.Marshal(s.Evaluation); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal evaluation: %w", err)
		}
	}
	return conversation, testResults, evaluation, nil
}

func (row *sessionRow) toDomain() (*domain.InterviewSession, error) {
	s := &domain.InterviewSession{
		ID:             row.ID,
		UserID:         row.UserID,
		ProblemID:      row.ProblemID,
		Language:       domain.Language(row.Language),
		Code:           row.Code,
		Conversation:   []domain.ChatMessage{},
		ElapsedSeconds: row.ElapsedSeconds,
		Status:         domain.SessionStatus(row.Status),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.CompletedAt.Valid {
		s.CompletedAt = &row.CompletedAt.Time
	}

	if len(row.Conversation) > 0 {
		if err := json.Unmarshal(row.Conversation, &s.Conversation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
		}
	}
	testResults, err := domain.UnmarshalTestRunSummary(row.TestResults)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal test results: %w", err)
	}
	s.TestResults = testResults

	if len(row.Evaluation) > 0 {
		var eval domain.Evaluation
		if err := json.Unmarshal(row.Evaluation, &eval); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
		}
		s.Evaluation = &eval
	}
	return s, nil
}
