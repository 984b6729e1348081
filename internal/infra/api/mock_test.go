package api

import (
	"context"
	"sync"
	"time"

	"mindmend/internal/domain/model"
)

// memLimiter counts calls per key without windows.
type memLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func newMemLimiter() *memLimiter { return &memLimiter{counts: map[string]int{}} }

func (m *memLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

// panickyUC fails every call the way an unexpected engine fault would.
type panickyUC struct{}

func (panickyUC) Respond(ctx context.Context, history []model.Message, message string) (*model.TherapistResponse, error) {
	panic("lexicon table corrupted")
}

func (panickyUC) Analyze(ctx context.Context, message string) (*model.Analysis, error) {
	panic("lexicon table corrupted")
}

func (panickyUC) Greeting(ctx context.Context) model.Message { return model.Message{} }
