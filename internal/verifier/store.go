package verifier

import (
	"context"
	"sync"

	id "landregistry/pkg/domain"
)

// Store tracks verifier membership. Membership only, no history: removing a
// verifier leaves no trace of their prior status.
type Store interface {
	Add(ctx context.Context, identity id.Identity) error
	Remove(ctx context.Context, identity id.Identity) error
	IsMember(ctx context.Context, identity id.Identity) (bool, error)
	List(ctx context.Context) ([]id.Identity, error)
}

// MemoryStore is the in-process membership set.
type MemoryStore struct {
	mu      sync.RWMutex
	members map[id.Identity]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{members: make(map[id.Identity]bool)}
}

func (s *MemoryStore) Add(_ context.Context, identity id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[identity] = true
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, identity id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, identity)
	return nil
}

func (s *MemoryStore) IsMember(_ context.Context, identity id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[identity], nil
}

func (s *MemoryStore) List(_ context.Context) ([]id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]id.Identity, 0, len(s.members))
	for identity := range s.members {
		members = append(members, identity)
	}
	return members, nil
}
