package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-member-gate/internal/domain"
)

// PendingStore keeps QR-tier challenges in process memory. Entries are lost on restart.
// Expired entries are evicted lazily when read; there is no background sweep.
type PendingStore struct {
	mu      sync.Mutex
	entries map[int64]domain.PendingVerification
}

func NewPendingStore() *PendingStore {
	return &PendingStore{entries: make(map[int64]domain.PendingVerification)}
}

// Put stores p, replacing any previous challenge for the same member.
func (s *PendingStore) Put(_ context.Context, p *domain.PendingVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[p.MemberID] = *p
	return nil
}

func (s *PendingStore) Get(_ context.Context, memberID int64, now time.Time) (*domain.PendingVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entries[memberID]
	if !ok {
		return nil, fmt.Errorf("pending verification %d: %w", memberID, domain.ErrNotFound)
	}
	if p.Expired(now) {
		delete(s.entries, memberID)
		return nil, fmt.Errorf("issued at %s: %w", p.IssuedAt.Format(time.RFC3339), domain.ErrChallengeExpired)
	}
	return &p, nil
}

// Delete removes the challenge. It reports ErrNotFound when there was nothing to remove,
// so of two concurrent consumers only one succeeds.
func (s *PendingStore) Delete(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[memberID]; !ok {
		return fmt.Errorf("pending verification %d: %w", memberID, domain.ErrNotFound)
	}
	delete(s.entries, memberID)
	return nil
}

// Len reports how many entries are held, expired ones included.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
