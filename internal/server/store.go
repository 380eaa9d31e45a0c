package server

import (
	"context"
	"sync"
	"time"
)

// DecodeRecord is one decode attempt. Unlock codes are not kept.
type DecodeRecord struct {
	ID        string
	RequestID string
	Make      string
	Field     string
	Status    string
	Message   string
	CreatedAt time.Time
}

type HistoryStore interface {
	Record(ctx context.Context, rec DecodeRecord) error
	// Recent returns at most limit records, newest first.
	Recent(ctx context.Context, limit int) ([]DecodeRecord, error)
	Count(ctx context.Context) (int64, error)
}

// MemoryStore keeps the last Cap records; older ones are dropped.
type MemoryStore struct {
	mu sync.Mutex

	Cap     int
	records []DecodeRecord
	total   int64
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryStore{Cap: capacity}
}

func (s *MemoryStore) Record(_ context.Context, rec DecodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if over := len(s.records) - s.Cap; over > 0 {
		s.records = append(s.records[:0:0], s.records[over:]...)
	}
	s.total++
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]DecodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]DecodeRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Count reports every record ever written, including dropped ones.
func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, nil
}
