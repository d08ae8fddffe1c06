package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ secondary.DraftStore = (*DraftRepository)(nil)

const (
	draftKeyPrefix  = "draft:"
	dirtySetKey     = "drafts:dirty"
	defaultDraftTTL = 24 * time.Hour
)

// markFlushed removes a session from the dirty set only when its score is not
// newer than the flushed draft.
var markFlushed = redis.NewScript(`
local score = redis.call("ZSCORE", KEYS[1], ARGV[1])
if score and tonumber(score) <= tonumber(ARGV[2]) then
	return redis.call("ZREM", KEYS[1], ARGV[1])
end
return 0
`)

// DraftRepository implements the DraftStore interface with Redis
type DraftRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      primary.Logger
}

// NewDraftRepository creates a new Redis draft repository
func NewDraftRepository(redisClient *redis.Client, ttl time.Duration, logger primary.Logger) *DraftRepository {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &DraftRepository{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func draftKey(sessionID uuid.UUID) string {
	return draftKeyPrefix + sessionID.String()
}

func dirtyScore(draft *domain.Draft) float64 {
	return float64(draft.SavedAt.UnixMilli())
}

// Put stores the draft and marks its session dirty
func (r *DraftRepository) Put(ctx context.Context, draft *domain.Draft) error {
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, draftKey(draft.SessionID), draftJSON, r.ttl)
		pipe.ZAdd(ctx, dirtySetKey, &redis.Z{Score: dirtyScore(draft), Member: draft.SessionID.String()})
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save draft", "sessionId", draft.SessionID, "error", err)
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Get retrieves the draft of a session, nil if there is none
func (r *DraftRepository) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Draft, error) {
	draftJSON, err := r.redisClient.Get(ctx, draftKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get draft", "sessionId", sessionID, "error", err)
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft domain.Draft
	if err := json.Unmarshal(draftJSON, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Dirty lists sessions whose drafts have not been flushed yet
func (r *DraftRepository) Dirty(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.redisClient.ZRange(ctx, dirtySetKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list dirty drafts: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			r.logger.Warn("Dropping invalid dirty draft entry", "member", member)
			r.redisClient.ZRem(ctx, dirtySetKey, member)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *DraftRepository) MarkFlushed(ctx context.Context, draft *domain.Draft) error {
	err := markFlushed.Run(ctx, r.redisClient, []string{dirtySetKey}, draft.SessionID.String(), dirtyScore(draft)).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to mark draft flushed: %w", err)
	}
	return nil
}

// Delete removes the draft and its dirty flag
func (r *DraftRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, draftKey(sessionID))
		pipe.ZRem(ctx, dirtySetKey, sessionID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
