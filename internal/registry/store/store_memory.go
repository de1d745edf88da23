package store

import (
	"context"
	"sync"

	"landregistry/internal/registry/models"
)

// MemoryParcelStore keeps the registry state in process. It is the
// authoritative implementation for tests and small deployments.
type MemoryParcelStore struct {
	mu        sync.RWMutex
	parcels   map[uint64]models.Parcel
	locations map[string]uint64
}

func NewMemoryParcelStore() *MemoryParcelStore {
	return &MemoryParcelStore{
		parcels:   make(map[uint64]models.Parcel),
		locations: make(map[string]uint64),
	}
}

func (s *MemoryParcelStore) Save(_ context.Context, parcel models.Parcel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := parcel
	stored.Documents = append([]string{}, parcel.Documents...)
	s.parcels[parcel.ID] = stored
	s.locations[models.LocationHash(parcel.Location)] = parcel.ID
	return nil
}

func (s *MemoryParcelStore) Get(_ context.Context, parcelID uint64) (models.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parcel, ok := s.parcels[parcelID]
	if !ok {
		return models.Parcel{}, ErrNotFound
	}
	parcel.Documents = append([]string{}, parcel.Documents...)
	return parcel, nil
}

func (s *MemoryParcelStore) Exists(_ context.Context, parcelID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.parcels[parcelID]
	return ok, nil
}

func (s *MemoryParcelStore) IDByLocationHash(_ context.Context, hash string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parcelID, ok := s.locations[hash]
	if !ok {
		return 0, ErrNotFound
	}
	return parcelID, nil
}

func (s *MemoryParcelStore) SetVerified(_ context.Context, parcelID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parcel, ok := s.parcels[parcelID]
	if !ok {
		return ErrNotFound
	}
	parcel.Verified = true
	s.parcels[parcelID] = parcel
	return nil
}

func (s *MemoryParcelStore) AppendDocument(_ context.Context, parcelID uint64, documentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parcel, ok := s.parcels[parcelID]
	if !ok {
		return ErrNotFound
	}
	parcel.Documents = append(parcel.Documents, documentRef)
	s.parcels[parcelID] = parcel
	return nil
}

func (s *MemoryParcelStore) Documents(_ context.Context, parcelID uint64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parcel, ok := s.parcels[parcelID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string{}, parcel.Documents...), nil
}
