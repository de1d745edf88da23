package store

import (
	"context"

	"landregistry/internal/registry/models"
	pkgerrors "landregistry/pkg/domain-errors"
)

// ErrNotFound keeps store-level misses consistent across the in-memory and
// Postgres implementations. Services translate it to the domain taxonomy.
var ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "record not found")

// ParcelStore persists parcel records and the location uniqueness index. It is
// interface-driven so the façade stays testable against the in-memory
// implementation while deployments can run on Postgres.
type ParcelStore interface {
	// Save inserts a freshly registered parcel and its location-hash index
	// entry as one step.
	Save(ctx context.Context, parcel models.Parcel) error

	// Get returns the parcel, or ErrNotFound.
	Get(ctx context.Context, parcelID uint64) (models.Parcel, error)

	// Exists reports whether the parcel id has been registered.
	Exists(ctx context.Context, parcelID uint64) (bool, error)

	// IDByLocationHash resolves the uniqueness index. Zero with ErrNotFound
	// means the location is unregistered.
	IDByLocationHash(ctx context.Context, hash string) (uint64, error)

	// SetVerified flips the verification flag. The caller enforces the
	// false-to-true-once rule; the store just writes.
	SetVerified(ctx context.Context, parcelID uint64) error

	// AppendDocument appends one reference to the parcel's document trail.
	AppendDocument(ctx context.Context, parcelID uint64, documentRef string) error

	// Documents returns the full append-ordered document trail.
	Documents(ctx context.Context, parcelID uint64) ([]string, error)
}
