package ledger

import (
	"context"
	"sync"

	id "landregistry/pkg/domain"
)

// MemoryLedger is the in-process asset ledger. It favors clarity over
// performance, mirroring the registry's in-memory stores: a mutex, two maps,
// and a monotonic counter.
type MemoryLedger struct {
	mu        sync.RWMutex
	owners    map[uint64]id.Identity
	approvals map[uint64]id.Identity
	nextID    uint64
	hook      TransferHook
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		owners:    make(map[uint64]id.Identity),
		approvals: make(map[uint64]id.Identity),
		nextID:    1,
	}
}

// Resume advances the id counter past lastID, for deployments whose parcel
// records outlive the process. Never lowers the counter.
func (l *MemoryLedger) Resume(lastID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lastID+1 > l.nextID {
		l.nextID = lastID + 1
	}
}

func (l *MemoryLedger) SetTransferHook(hook TransferHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hook = hook
}

func (l *MemoryLedger) Mint(_ context.Context, owner id.Identity) (uint64, error) {
	if owner.IsZero() {
		return 0, ErrZeroIdentity
	}
	l.mu.Lock()
	tokenID := l.nextID
	l.nextID++
	l.owners[tokenID] = owner
	hook := l.hook
	l.mu.Unlock()

	if hook != nil {
		hook(id.Zero, owner, tokenID)
	}
	return tokenID, nil
}

func (l *MemoryLedger) Burn(_ context.Context, owner id.Identity, tokenID uint64) error {
	l.mu.Lock()
	current, ok := l.owners[tokenID]
	if !ok {
		l.mu.Unlock()
		return ErrUnknownToken
	}
	if current != owner {
		l.mu.Unlock()
		return ErrNotOwner
	}
	delete(l.owners, tokenID)
	delete(l.approvals, tokenID)
	if tokenID == l.nextID-1 {
		l.nextID--
	}
	hook := l.hook
	l.mu.Unlock()

	if hook != nil {
		hook(owner, id.Zero, tokenID)
	}
	return nil
}

func (l *MemoryLedger) TransferOwnership(_ context.Context, from, to id.Identity, tokenID uint64) error {
	if to.IsZero() {
		return ErrZeroIdentity
	}
	l.mu.Lock()
	owner, ok := l.owners[tokenID]
	if !ok {
		l.mu.Unlock()
		return ErrUnknownToken
	}
	if owner != from {
		l.mu.Unlock()
		return ErrNotOwner
	}
	l.owners[tokenID] = to
	// Approvals are per-owner and do not survive a transfer.
	delete(l.approvals, tokenID)
	hook := l.hook
	l.mu.Unlock()

	if hook != nil {
		hook(from, to, tokenID)
	}
	return nil
}

func (l *MemoryLedger) OwnerOf(_ context.Context, tokenID uint64) (id.Identity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, ok := l.owners[tokenID]
	if !ok {
		return id.Zero, ErrUnknownToken
	}
	return owner, nil
}

func (l *MemoryLedger) Exists(_ context.Context, tokenID uint64) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.owners[tokenID]
	return ok, nil
}

func (l *MemoryLedger) Approve(_ context.Context, owner, delegate id.Identity, tokenID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := l.owners[tokenID]
	if !ok {
		return ErrUnknownToken
	}
	if current != owner {
		return ErrNotOwner
	}
	if delegate.IsZero() {
		delete(l.approvals, tokenID)
		return nil
	}
	l.approvals[tokenID] = delegate
	return nil
}

func (l *MemoryLedger) IsApprovedOrOwner(_ context.Context, caller id.Identity, tokenID uint64) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, ok := l.owners[tokenID]
	if !ok {
		return false, ErrUnknownToken
	}
	if owner == caller {
		return true, nil
	}
	return l.approvals[tokenID] == caller, nil
}
