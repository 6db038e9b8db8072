package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Sajal133/truerate-api/internal/domain/model"
)

// MemoryStore keeps weights in a map. It is the default store and the one
// tests substitute for external backends.
type MemoryStore struct {
	mu     sync.RWMutex
	byKey  map[string]float64
	closed atomic.Bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: make(map[string]float64)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (float64, bool, error) {
	if s.closed.Load() {
		return 0, false, ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byKey[key]
	return v, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value float64) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	s.byKey[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetAll(_ context.Context) (map[string]float64, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

// MemoryFeedbackLog keeps feedback in memory, keyed like the SQLite log on
// (text hash, vote).
type MemoryFeedbackLog struct {
	mu   sync.RWMutex
	recs map[string]model.FeedbackRecord
}

// NewMemoryFeedbackLog returns an empty log.
func NewMemoryFeedbackLog() *MemoryFeedbackLog {
	return &MemoryFeedbackLog{recs: make(map[string]model.FeedbackRecord)}
}

func (l *MemoryFeedbackLog) Record(_ context.Context, rec model.FeedbackRecord) error {
	if rec.TextHash == "" {
		rec.TextHash = model.HashText(rec.Text)
	}
	key := rec.TextHash + "|" + voteKey(rec.UserVote)
	l.mu.Lock()
	l.recs[key] = rec
	l.mu.Unlock()
	return nil
}

func (l *MemoryFeedbackLog) Stats(_ context.Context) (model.FeedbackStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t := newTally(BackendMemory)
	for _, r := range l.recs {
		t.add(r.PredictedClass, r.UserVote)
	}
	return t.stats(), nil
}

func voteKey(v int) string {
	if v > 0 {
		return "+1"
	}
	return "-1"
}
