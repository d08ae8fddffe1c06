package secondary

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

type EventPublisher interface {
	PublishInterviewCompleted(ctx context.Context, event *domain.InterviewCompletedEvent) error
}
