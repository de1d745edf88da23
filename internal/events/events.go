// Package events carries the registry's externally observable notifications.
// Events are append-only and ordered by operation sequence: an operation that
// is rejected emits nothing, an accepted operation emits after its state
// changes have been applied.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "landregistry/pkg/domain"
)

// Type enumerates the notification kinds the registry emits.
type Type string

const (
	TypeParcelRegistered Type = "parcel.registered"
	TypeParcelVerified   Type = "parcel.verified"
	TypeVerifierAdded    Type = "verifier.added"
	TypeVerifierRemoved  Type = "verifier.removed"
	TypeDocumentAdded    Type = "document.added"
)

// Event is one notification. Only the fields relevant to the event type are
// populated; the rest stay zero.
type Event struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	ParcelID    uint64      `json:"parcelId,omitempty"`
	Owner       id.Identity `json:"owner,omitempty"`
	Location    string      `json:"location,omitempty"`
	Identity    id.Identity `json:"identity,omitempty"`
	DocumentRef string      `json:"documentRef,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

//go:generate mockgen -source=events.go -destination=mocks/publisher.go -package=mocks

// Publisher receives events from domain services. Implementations must not
// reorder events from a single caller.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// stamp fills the envelope fields services leave blank.
func stamp(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return event
}

// ParcelRegistered builds the registration notification.
func ParcelRegistered(parcelID uint64, owner id.Identity, location string) Event {
	return Event{Type: TypeParcelRegistered, ParcelID: parcelID, Owner: owner, Location: location}
}

// ParcelVerified builds the verification notification.
func ParcelVerified(parcelID uint64) Event {
	return Event{Type: TypeParcelVerified, ParcelID: parcelID}
}

// VerifierAdded builds the verifier authorization notification.
func VerifierAdded(identity id.Identity) Event {
	return Event{Type: TypeVerifierAdded, Identity: identity}
}

// VerifierRemoved builds the verifier deauthorization notification.
func VerifierRemoved(identity id.Identity) Event {
	return Event{Type: TypeVerifierRemoved, Identity: identity}
}

// DocumentAdded builds the document trail notification.
func DocumentAdded(parcelID uint64, documentRef string) Event {
	return Event{Type: TypeDocumentAdded, ParcelID: parcelID, DocumentRef: documentRef}
}
