package secondary

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// ChatCompleter produces free-form text from a conversation.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}
