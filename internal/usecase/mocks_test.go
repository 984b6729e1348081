// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"errors"
	"sync"

	"mindmend/internal/domain"
	"mindmend/internal/domain/model"
)

// memResponseCache is a small in-memory ResponseCache used by unit tests.
type memResponseCache struct {
	mu     sync.Mutex
	store  map[string]model.TherapistResponse
	gets   int
	sets   int
	getErr error // used by tests to simulate backend failures
	setErr error
}

func newMemResponseCache() *memResponseCache {
	return &memResponseCache{store: make(map[string]model.TherapistResponse)}
}

func (m *memResponseCache) Get(ctx context.Context, message string) (*model.TherapistResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.store[message]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &r, nil
}

func (m *memResponseCache) Set(ctx context.Context, message string, resp *model.TherapistResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.store[message] = *resp
	return nil
}

// countingEngine wraps a real engine, counting pipeline runs and recording
// the history it was handed.
type countingEngine struct {
	ResponseEngine
	mu          sync.Mutex
	generated   int
	analyzed    int
	lastHistory []model.Message
}

func (c *countingEngine) GenerateWithAnalysis(history []model.Message, message string) (model.TherapistResponse, model.Analysis) {
	c.mu.Lock()
	c.generated++
	c.lastHistory = history
	c.mu.Unlock()
	return c.ResponseEngine.GenerateWithAnalysis(history, message)
}

func (c *countingEngine) Analyze(message string) model.Analysis {
	c.mu.Lock()
	c.analyzed++
	c.mu.Unlock()
	return c.ResponseEngine.Analyze(message)
}

var errRedisDown = errors.New("redis: connection refused")
