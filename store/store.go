// Package store keeps the training samples received by the classifier server.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/juruen/digitpad/sample"
)

// Record is one stored training sample
type Record struct {
	ID      uuid.UUID
	Image   sample.Sample
	Label   sample.Label
	Created time.Time
}

// Store persists training samples. Add returns the number of stored samples
// after the insert.
type Store interface {
	Add(ctx context.Context, image sample.Sample, label sample.Label) (Record, int, error)
	All(ctx context.Context) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// MemoryStore keeps samples in memory, for tests and quick starts.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Add(ctx context.Context, image sample.Sample, label sample.Label) (Record, int, error) {
	r := Record{ID: uuid.New(), Image: image, Label: label, Created: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return r, len(s.records), nil
}

func (s *MemoryStore) All(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
