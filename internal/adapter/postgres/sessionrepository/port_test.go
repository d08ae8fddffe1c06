package sessionrepository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codeprep.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newRepository(t *testing.T) (*SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewSessionRepository(sqlx.NewDb(db, "sqlmock"), "practice", nopLogger{}), mock
}

func TestSaveDraftOnlyUpdatesActiveSession(t *testing.T) {
	t.Parallel()

	repo, mock := newRepository(t)
	id := uuid.New()
	saved := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE practice.interview_sessions SET code = $1, elapsed_seconds = $2, updated_at = $3 WHERE id = $4 AND status = $5").
		WithArgs("print(2)", int64(90), saved, id.String(), "ACTIVE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveDraft(context.Background(), &domain.Draft{
		SessionID:      id,
		Code:           "print(2)",
		ElapsedSeconds: 90,
		SavedAt:        saved,
	})
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}
}

func TestSaveDraftWrapsDatabaseError(t *testing.T) {
	t.Parallel()

	repo, mock := newRepository(t)
	dbErr := errors.New("connection reset")
	mock.ExpectExec("UPDATE practice.interview_sessions SET code = $1, elapsed_seconds = $2, updated_at = $3 WHERE id = $4 AND status = $5").
		WillReturnError(dbErr)

	err := repo.SaveDraft(context.Background(), &domain.Draft{SessionID: uuid.New(), SavedAt: time.Now()})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped database error, got %v", err)
	}
}

func TestSaveReportsMissingSession(t *testing.T) {
	t.Parallel()

	repo, mock := newRepository(t)
	session := &domain.InterviewSession{
		ID:        uuid.New(),
		Code:      "x",
		Status:    domain.SessionStatusCompleted,
		UpdatedAt: time.Now(),
	}
	mock.ExpectExec("UPDATE practice.interview_sessions SET code = $1, conversation = $2, test_results = $3, elapsed_seconds = $4, status = $5, evaluation = $6, updated_at = $7, completed_at = $8 WHERE id = $9").
		WithArgs("x", []byte("[]"), []byte(nil), int64(0), "COMPLETED", []byte(nil), sqlmock.AnyArg(), nil, session.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), session)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestGetDecodesJSONColumns(t *testing.T) {
	t.Parallel()

	repo, mock := newRepository(t)
	id, userID := uuid.New(), uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columns()).AddRow(
		id.String(), userID.String(), "two-sum", "python", "print(1)",
		[]byte(`[{"role":"user","content":"hi","createdAt":"2025-03-01T12:00:00Z"}]`),
		nil, int64(30), "ACTIVE", nil, created, created, nil,
	)
	mock.ExpectQuery("SELECT id, user_id, problem_id, language, code, conversation, test_results, elapsed_seconds, status, evaluation, created_at, updated_at, completed_at FROM practice.interview_sessions WHERE id = $1").
		WithArgs(id.String()).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != id || got.UserID != userID || got.Language != domain.LanguagePython {
		t.Fatalf("unexpected session: %+v", got)
	}
	if len(got.Conversation) != 1 || got.Conversation[0].Content != "hi" {
		t.Fatalf("unexpected conversation: %+v", got.Conversation)
	}
	if got.TestResults != nil || got.Evaluation != nil || got.CompletedAt != nil {
		t.Fatalf("expected empty optional columns, got %+v", got)
	}
}

func TestGetMissingSessionReturnsNil(t *testing.T) {
	t.Parallel()

	repo, mock := newRepository(t)
	mock.ExpectQuery("SELECT id, user_id, problem_id, language, code, conversation, test_results, elapsed_seconds, status, evaluation, created_at, updated_at, completed_at FROM practice.interview_sessions WHERE id = $1").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil session, got %+v", got)
	}
}
