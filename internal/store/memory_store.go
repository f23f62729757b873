package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
)

// MemoryStore is an in-memory implementation of both collections.
// Suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	participants map[string]int64
	messages     []domain.Message

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participants: make(map[string]int64),
		now:          time.Now,
	}
}

// SetClock replaces the wall clock used for message timestamps. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MemoryStore) Insert(ctx context.Context, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[p.Name]; exists {
		return ErrParticipantExists
	}
	s.participants[p.Name] = p.LastStatus
	return nil
}

func (s *MemoryStore) UpdateLastStatus(ctx context.Context, name string, lastStatus int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[name]; !exists {
		return ErrParticipantNotFound
	}
	s.participants[name] = lastStatus
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Participant, 0, len(s.participants))
	for name, ts := range s.participants {
		result = append(result, domain.Participant{Name: name, LastStatus: ts})
	}
	return result, nil
}

func (s *MemoryStore) SweepStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoffMillis := cutoff.UnixMilli()

	var removed []domain.Participant
	for name, ts := range s.participants {
		if ts < cutoffMillis {
			delete(s.participants, name)
			removed = append(removed, domain.Participant{Name: name, LastStatus: ts})
		}
	}
	return removed, nil
}

func (s *MemoryStore) Append(ctx context.Context, m domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.NewString()
	m.Time = s.now().Format(domain.TimeLayout)
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *MemoryStore) VisibleTo(ctx context.Context, name string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.To == domain.RecipientEveryone || m.To == name || m.From == name {
			result = append(result, m)
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Message{}, ErrMessageNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return ErrMessageNotFound
}

func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements both store interfaces.
var (
	_ ParticipantStore = (*MemoryStore)(nil)
	_ MessageStore     = (*MemoryStore)(nil)
)
