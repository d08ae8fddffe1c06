package schedulerengine

import (
	"context"
	"sync"
	"time"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
)

const finalFlushTimeout = 5 * time.Second

// DraftFlusher persists buffered editor drafts.
type DraftFlusher interface {
	FlushDrafts(ctx context.Context) (int, error)
}

type SchedulerEngine struct {
	flushInterval time.Duration
	flusher       DraftFlusher
	logger        primary.Logger
	wg            sync.WaitGroup
}

func NewSchedulerEngine(
	flushInterval time.Duration,
	flusher DraftFlusher,
	logger primary.Logger,
) *SchedulerEngine {
	return &SchedulerEngine{
		flushInterval: flushInterval,
		flusher:       flusher,
		logger:        logger,
	}
}

// StartDraftFlushEngine flushes drafts every interval until ctx is done, then
// runs one last flush so drafts saved just before shutdown are not lost.
func (s *SchedulerEngine) StartDraftFlushEngine(ctx context.Context) {
	s.wg.Add(1)
	ticker := time.NewTicker(s.flushInterval)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				finalCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
				s.flushDrafts(finalCtx)
				cancel()
				return
			case <-ticker.C:
				s.flushDrafts(ctx)
			}
		}
	}()
}

// Wait blocks until the engine goroutines have returned.
func (s *SchedulerEngine) Wait() {
	s.wg.Wait()
}

func (s *SchedulerEngine) flushDrafts(ctx context.Context) {
	n, err := s.flusher.FlushDrafts(ctx)
	if err != nil {
		s.logger.Error("Failed to flush drafts", "flushed", n, "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("Drafts flushed", "count", n)
	}
}
