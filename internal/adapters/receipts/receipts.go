// Package receipts stores execution receipts.
package receipts

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

var (
	ErrDuplicateReceipt = errors.New("duplicate receipt")
	ErrNotFound         = errors.New("receipt not found")
)

// Sink receives one receipt per successful execution.
type Sink interface {
	Record(ctx context.Context, receipt domain.ExecutionReceipt) error
	Name() string
}

type Noop struct{}

func (Noop) Record(context.Context, domain.ExecutionReceipt) error { return nil }

func (Noop) Name() string { return "noop" }

// Memory keeps receipts in process, keyed by id.
type Memory struct {
	mu   sync.RWMutex
	data map[string]domain.ExecutionReceipt
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]domain.ExecutionReceipt)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Record(_ context.Context, r domain.ExecutionReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[r.ID]; exists {
		return ErrDuplicateReceipt
	}
	m.data[r.ID] = r
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (domain.ExecutionReceipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.data[id]
	if !ok {
		return domain.ExecutionReceipt{}, ErrNotFound
	}
	return r, nil
}

// List returns every receipt, oldest first.
func (m *Memory) List() []domain.ExecutionReceipt {
	m.mu.RLock()
	out := make([]domain.ExecutionReceipt, 0, len(m.data))
	for _, r := range m.data {
		out = append(out, r)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExecutedAt.Equal(out[j].ExecutedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ExecutedAt.Before(out[j].ExecutedAt)
	})
	return out
}
