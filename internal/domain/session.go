package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus of an interview session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// ChatRole of a conversation message.
type ChatRole string

const (
	ChatRoleSystem      ChatRole = "system"
	ChatRoleInterviewer ChatRole = "assistant"
	ChatRoleCandidate   ChatRole = "user"
)

type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// InterviewSession is the persisted record of one practice interview.
type InterviewSession struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	ProblemID      string          `json:"problemId"`
	Language       Language        `json:"language"`
	Code           string          `json:"code"`
	Conversation   []ChatMessage   `json:"conversation"`
	TestResults    *TestRunSummary `json:"testResults,omitempty"`
	ElapsedSeconds int64           `json:"elapsedSeconds"`
	Status         SessionStatus   `json:"status"`
	Evaluation     *Evaluation     `json:"evaluation,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

// NewInterviewSession creates an active session seeded with starter code.
func NewInterviewSession(userID uuid.UUID, problem *Problem, language Language) *InterviewSession {
	now := time.Now().UTC()
	return &InterviewSession{
		ID:           uuid.New(),
		UserID:       userID,
		ProblemID:    problem.ID,
		Language:     language,
		Code:         problem.StarterCode[language],
		Conversation: []ChatMessage{},
		Status:       SessionStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Draft is an auto-saved editor snapshot not yet persisted to the session.
type Draft struct {
	SessionID      uuid.UUID `json:"sessionId"`
	Code           string    `json:"code"`
	ElapsedSeconds int64     `json:"elapsedSeconds"`
	SavedAt        time.Time `json:"savedAt"`
}

// SessionTable holds interview_sessions column names.
type SessionTable struct {
	ID             string
	UserID         string
	ProblemID      string
	Language       string
	Code           string
	Conversation   string
	TestResults    string
	ElapsedSeconds string
	Status         string
	Evaluation     string
	CreatedAt      string
	UpdatedAt      string
	CompletedAt    string
}

func GetSessionTable() SessionTable {
	return SessionTable{
		ID:             "id",
		UserID:         "user_id",
		ProblemID:      "problem_id",
		Language:       "language",
		Code:           "code",
		Conversation:   "conversation",
		TestResults:    "test_results",
		ElapsedSeconds: "elapsed_seconds",
		Status:         "status",
		Evaluation:     "evaluation",
		CreatedAt:      "created_at",
		UpdatedAt:      "updated_at",
		CompletedAt:    "completed_at",
	}
}

func (SessionTable) TableName() string {
	return "interview_sessions"
}

// InterviewCompletedEvent is published when a session is scored.
type InterviewCompletedEvent struct {
	SessionID  uuid.UUID  `json:"sessionId"`
	UserID     uuid.UUID  `json:"userId"`
	ProblemID  string     `json:"problemId"`
	Difficulty Difficulty `json:"difficulty"`
	Total      int        `json:"total"`
	Grade      Grade      `json:"grade"`
	OccurredAt time.Time  `json:"occurredAt"`
}
