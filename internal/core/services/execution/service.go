package execution

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// IExecutionService runs programs against test cases on the remote judge.
type IExecutionService interface {
	// RunTestCase submits one program run and grades its output against expected.
	RunTestCase(ctx context.Context, sourceCode string, languageID int, stdin string, expected domain.Value) (*domain.TestCaseOutcome, error)

	// RunTestSuite grades every test case and returns outcomes in input order.
	// Only errs.ErrServiceUnavailable and context errors abort the suite.
	RunTestSuite(ctx context.Context, sourceCode string, language domain.Language, testCases []domain.TestCase) ([]domain.TestCaseOutcome, error)
}
