// Package ownerindex materializes the per-owner view of parcel holdings. It is
// maintained exclusively through the ledger transfer hook, so direct ledger
// transfers and the registry's own transfer entrypoint move the index through
// the identical code path.
package ownerindex

import (
	"sync"

	id "landregistry/pkg/domain"
)

// Index maps each identity to the parcel ids it currently holds. The sequence
// has no guaranteed order after a removal: Remove swaps the victim with the
// last element and truncates, trading stable order for O(1) deletion.
type Index struct {
	mu       sync.RWMutex
	holdings map[id.Identity][]uint64
}

func New() *Index {
	return &Index{holdings: make(map[id.Identity][]uint64)}
}

// Add appends parcelID to owner's holdings.
func (x *Index) Add(owner id.Identity, parcelID uint64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.holdings[owner] = append(x.holdings[owner], parcelID)
}

// Remove drops parcelID from owner's holdings via swap-with-last-and-truncate.
// Returns false when the id was not present.
func (x *Index) Remove(owner id.Identity, parcelID uint64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	seq := x.holdings[owner]
	for i, held := range seq {
		if held == parcelID {
			last := len(seq) - 1
			seq[i] = seq[last]
			x.holdings[owner] = seq[:last]
			return true
		}
	}
	return false
}

// Move applies a removal and an append as one step, the shape every ownership
// change takes when it reaches the index through the transfer hook. A zero
// `from` is a mint; a mint only appends.
func (x *Index) Move(from, to id.Identity, parcelID uint64) {
	if !from.IsZero() {
		x.Remove(from, parcelID)
	}
	if !to.IsZero() {
		x.Add(to, parcelID)
	}
}

// List returns a copy of owner's current holdings. Unknown owners yield an
// empty, non-nil slice.
func (x *Index) List(owner id.Identity) []uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]uint64{}, x.holdings[owner]...)
}

// Holdings reports how many parcels owner currently holds.
func (x *Index) Holdings(owner id.Identity) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.holdings[owner])
}

// Contains reports whether owner's sequence includes parcelID.
func (x *Index) Contains(owner id.Identity, parcelID uint64) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, held := range x.holdings[owner] {
		if held == parcelID {
			return true
		}
	}
	return false
}
