package schema

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
)

// statements are applied in order; every one must be idempotent.
var statements = []struct {
	name  string
	query string
}{
	{"schema", `CREATE SCHEMA IF NOT EXISTS %[1]s`},
	{"users", `
		CREATE TABLE IF NOT EXISTS %[1]s.users (
			id UUID PRIMARY KEY,
			user_name VARCHAR(64) NOT NULL UNIQUE,
			password_hash TEXT,
			email TEXT,
			auth_provider VARCHAR(16) NOT NULL,
			google_id TEXT UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		)`},
	{"interview_sessions", `
		CREATE TABLE IF NOT EXISTS %[1]s.interview_sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES %[1]s.users(id) ON DELETE CASCADE,
			problem_id VARCHAR(128) NOT NULL,
			language VARCHAR(32) NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			conversation JSONB NOT NULL DEFAULT '[]',
			test_results JSONB,
			elapsed_seconds BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL,
			evaluation JSONB,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
			completed_at TIMESTAMP WITH TIME ZONE
		)`},
	{"interview_sessions_user_idx", `
		CREATE INDEX IF NOT EXISTS interview_sessions_user_created_idx
			ON %[1]s.interview_sessions (user_id, created_at DESC)`},
}

// EnsureTablesExist creates the tables used by the user and session repositories.
func EnsureTablesExist(ctx context.Context, db *sqlx.DB, schema string, logger primary.Logger) error {
	quoted := pq.QuoteIdentifier(schema)
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(stmt.query, quoted)); err != nil {
			logger.Error("Failed to apply schema statement", "statement", stmt.name, "error", err)
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}
	logger.Info("Database schema ready", "schema", schema)
	return nil
}
