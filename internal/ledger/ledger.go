package ledger

import (
	"context"

	id "landregistry/pkg/domain"
	pkgerrors "landregistry/pkg/domain-errors"
)

// Ledger is the non-fungible asset capability the registry composes. It owns
// token identity, minting, and transfer; the registry owns everything parcel
// shaped. Every ownership change flows through the transfer hook so callers
// that bypass the registry's own transfer entrypoint still keep its indices
// honest.
type Ledger interface {
	// Mint creates the next token for owner and returns its id. Ids are
	// dense from 1 upward; only a burn of the newest token releases an id.
	Mint(ctx context.Context, owner id.Identity) (uint64, error)

	// Burn retracts a token, deleting its ownership and any approval. The
	// hook fires with a zero `to`. Burning the newest token releases its id
	// for the next mint, so a mint undone by its caller leaves no gap.
	Burn(ctx context.Context, owner id.Identity, tokenID uint64) error

	// TransferOwnership moves token id from `from` to `to`. Fails when
	// `from` is not the current owner or the token does not exist.
	TransferOwnership(ctx context.Context, from, to id.Identity, tokenID uint64) error

	// OwnerOf returns the current owner, or ErrUnknownToken.
	OwnerOf(ctx context.Context, tokenID uint64) (id.Identity, error)

	// Exists reports whether the token has been minted.
	Exists(ctx context.Context, tokenID uint64) (bool, error)

	// Approve grants delegate transfer/document rights on a single token.
	// Only the current owner may approve.
	Approve(ctx context.Context, owner, delegate id.Identity, tokenID uint64) error

	// IsApprovedOrOwner reports whether caller may act on the token.
	IsApprovedOrOwner(ctx context.Context, caller id.Identity, tokenID uint64) (bool, error)

	// SetTransferHook installs the single interception point invoked after
	// every ownership change, including mints (from is the zero identity).
	// At most one hook is supported; installing replaces the previous one.
	SetTransferHook(hook TransferHook)
}

// TransferHook observes an ownership change that has already been applied to
// the ledger. Hooks must not call back into the ledger.
type TransferHook func(from, to id.Identity, tokenID uint64)

var (
	ErrUnknownToken = pkgerrors.New(pkgerrors.CodeUnknownParcel, "token does not exist")
	ErrNotOwner     = pkgerrors.New(pkgerrors.CodeNotAuthorized, "caller does not own token")
	ErrZeroIdentity = pkgerrors.New(pkgerrors.CodeBadRequest, "identity must not be zero")
)
