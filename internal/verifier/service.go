// Package verifier manages the authorization list of identities empowered to
// attest parcel claims. A single controller identity, fixed at construction,
// has unilateral authority over membership.
package verifier

import (
	"context"
	"log/slog"

	"landregistry/internal/events"
	"landregistry/internal/platform/metrics"
	id "landregistry/pkg/domain"
	pkgerrors "landregistry/pkg/domain-errors"
)

// Service enforces the controller capability and emits membership
// notifications. Add and Remove are idempotent: re-adding an active verifier
// or removing an absent one succeeds and changes nothing else.
type Service struct {
	controller id.Identity
	store      Store
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(controller id.Identity, store Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		controller: controller,
		store:      store,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}
}

func (s *Service) requireController(caller id.Identity) error {
	if caller != s.controller {
		return pkgerrors.New(pkgerrors.CodeNotController, "caller is not the registry controller")
	}
	return nil
}

// Add authorizes identity as a verifier.
func (s *Service) Add(ctx context.Context, caller, identity id.Identity) error {
	if err := s.requireController(caller); err != nil {
		return err
	}
	if identity.IsZero() {
		return pkgerrors.New(pkgerrors.CodeBadRequest, "verifier identity must not be empty")
	}
	if err := s.store.Add(ctx, identity); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "add verifier")
	}
	s.metrics.VerifierChanges.WithLabelValues("added").Inc()
	if err := s.publisher.Emit(ctx, events.VerifierAdded(identity)); err != nil {
		s.logger.ErrorContext(ctx, "emit verifier-added failed", "identity", identity, "error", err)
	}
	return nil
}

// Remove deauthorizes identity.
func (s *Service) Remove(ctx context.Context, caller, identity id.Identity) error {
	if err := s.requireController(caller); err != nil {
		return err
	}
	if identity.IsZero() {
		return pkgerrors.New(pkgerrors.CodeBadRequest, "verifier identity must not be empty")
	}
	if err := s.store.Remove(ctx, identity); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "remove verifier")
	}
	s.metrics.VerifierChanges.WithLabelValues("removed").Inc()
	if err := s.publisher.Emit(ctx, events.VerifierRemoved(identity)); err != nil {
		s.logger.ErrorContext(ctx, "emit verifier-removed failed", "identity", identity, "error", err)
	}
	return nil
}

// IsVerifier reports whether identity is currently authorized.
func (s *Service) IsVerifier(ctx context.Context, identity id.Identity) (bool, error) {
	member, err := s.store.IsMember(ctx, identity)
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "check verifier")
	}
	return member, nil
}

// List returns the current membership, in no particular order.
func (s *Service) List(ctx context.Context) ([]id.Identity, error) {
	members, err := s.store.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "list verifiers")
	}
	return members, nil
}
