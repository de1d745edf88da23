// Package service implements the registry façade: the single public operation
// surface composing the asset ledger, the parcel store, the location index,
// the owner index, and the verifier list. Mutating operations are serialized
// by one mutex and validate completely before touching state, so a rejected
// operation leaves nothing behind and emits no notification.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"landregistry/internal/events"
	"landregistry/internal/ledger"
	"landregistry/internal/platform/metrics"
	"landregistry/internal/registry/models"
	"landregistry/internal/registry/ownerindex"
	"landregistry/internal/registry/store"
	id "landregistry/pkg/domain"
	pkgerrors "landregistry/pkg/domain-errors"
)

// VerifierChecker is the slice of the verifier service the façade needs.
type VerifierChecker interface {
	IsVerifier(ctx context.Context, identity id.Identity) (bool, error)
}

// Service is the registry façade.
type Service struct {
	mu sync.Mutex

	parcels   store.ParcelStore
	owners    *ownerindex.Index
	assets    ledger.Ledger
	verifiers VerifierChecker
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	now func() time.Time
}

// NewService wires the façade and installs the owner-index maintenance hook on
// the ledger. The hook is the only writer of the owner index: the registry's
// own transfer entrypoint and any ledger-level transfer that bypasses it run
// the identical removal/append sequence.
func NewService(
	parcels store.ParcelStore,
	owners *ownerindex.Index,
	assets ledger.Ledger,
	verifiers VerifierChecker,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	s := &Service{
		parcels:   parcels,
		owners:    owners,
		assets:    assets,
		verifiers: verifiers,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("landregistry/registry"),
		now:       time.Now,
	}
	assets.SetTransferHook(s.onOwnershipChange)
	return s
}

// onOwnershipChange keeps the owner index consistent with the ledger. It runs
// after the ledger applied the change, for mints (zero from) and transfers
// alike.
func (s *Service) onOwnershipChange(from, to id.Identity, parcelID uint64) {
	s.owners.Move(from, to, parcelID)
}

func (s *Service) reject(err error) error {
	s.metrics.RejectedOps.WithLabelValues(string(pkgerrors.CodeOf(err))).Inc()
	return err
}

// Register issues a new parcel record to caller. The location is the
// uniqueness key: a second registration of the same location fails with
// DuplicateLocation before any state changes.
func (s *Service) Register(ctx context.Context, caller id.Identity, location, surveyRef, initialDocRef string) (uint64, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Register")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if caller.IsZero() {
		return 0, s.reject(pkgerrors.New(pkgerrors.CodeBadRequest, "caller identity is required"))
	}
	if location == "" {
		return 0, s.reject(pkgerrors.New(pkgerrors.CodeBadRequest, "location is required"))
	}
	if initialDocRef == "" {
		return 0, s.reject(pkgerrors.New(pkgerrors.CodeBadRequest, "registration document reference is required"))
	}

	hash := models.LocationHash(location)
	existing, err := s.parcels.IDByLocationHash(ctx, hash)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "location lookup"))
	}
	if existing != 0 {
		return 0, s.reject(pkgerrors.Newf(pkgerrors.CodeDuplicateLocation, "location already registered as parcel %d", existing))
	}

	// The minted token id doubles as the parcel id; the ledger's counter is
	// the single source of dense ids from 1 upward. The mint hook appends
	// the id to the caller's owner-index sequence.
	parcelID, err := s.assets.Mint(ctx, caller)
	if err != nil {
		return 0, s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "mint parcel token"))
	}

	parcel := models.Parcel{
		ID:              parcelID,
		Location:        location,
		SurveyReference: surveyRef,
		Verified:        false,
		RegisteredAt:    s.now(),
		Documents:       []string{initialDocRef},
	}
	if err := s.parcels.Save(ctx, parcel); err != nil {
		// Retract the mint so the rejection leaves no token and, via the
		// hook, no owner-index entry behind.
		if burnErr := s.assets.Burn(ctx, caller, parcelID); burnErr != nil {
			s.logger.ErrorContext(ctx, "retract mint failed",
				"parcel_id", parcelID,
				"error", burnErr,
			)
		}
		return 0, s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "save parcel"))
	}

	s.metrics.ParcelsRegistered.Inc()
	s.emit(ctx, events.ParcelRegistered(parcelID, caller, location))
	s.logger.InfoContext(ctx, "parcel registered",
		"parcel_id", parcelID,
		"owner", caller,
	)
	return parcelID, nil
}

// Verify marks a parcel as attested. The flag transitions false to true
// exactly once; verification is never revoked.
func (s *Service) Verify(ctx context.Context, caller id.Identity, parcelID uint64) error {
	ctx, span := s.tracer.Start(ctx, "registry.Verify")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.verifiers.IsVerifier(ctx, caller)
	if err != nil {
		return s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "verifier lookup"))
	}
	if !active {
		return s.reject(pkgerrors.New(pkgerrors.CodeNotVerifier, "caller is not an active verifier"))
	}

	parcel, err := s.parcels.Get(ctx, parcelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.reject(pkgerrors.Newf(pkgerrors.CodeUnknownParcel, "parcel %d does not exist", parcelID))
		}
		return s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "load parcel"))
	}
	if parcel.Verified {
		return s.reject(pkgerrors.Newf(pkgerrors.CodeAlreadyVerified, "parcel %d is already verified", parcelID))
	}

	if err := s.parcels.SetVerified(ctx, parcelID); err != nil {
		return s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "set verified"))
	}

	s.metrics.ParcelsVerified.Inc()
	s.emit(ctx, events.ParcelVerified(parcelID))
	s.logger.InfoContext(ctx, "parcel verified", "parcel_id", parcelID, "verifier", caller)
	return nil
}

// AddDocument appends a document reference to the parcel's trail. Only the
// current owner or an approved delegate may append; there is no dedup and no
// ordering beyond append order.
func (s *Service) AddDocument(ctx context.Context, caller id.Identity, parcelID uint64, documentRef string) error {
	ctx, span := s.tracer.Start(ctx, "registry.AddDocument")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if documentRef == "" {
		return s.reject(pkgerrors.New(pkgerrors.CodeBadRequest, "document reference is required"))
	}
	if err := s.authorize(ctx, caller, parcelID); err != nil {
		return s.reject(err)
	}

	if err := s.parcels.AppendDocument(ctx, parcelID, documentRef); err != nil {
		return s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "append document"))
	}

	s.metrics.DocumentsAdded.Inc()
	s.emit(ctx, events.DocumentAdded(parcelID, documentRef))
	return nil
}

// TransferLand moves a parcel to a new owner. Authorization matches
// AddDocument; the actual ownership change is delegated to the ledger, whose
// transfer hook performs the owner-index removal and append.
func (s *Service) TransferLand(ctx context.Context, caller, to id.Identity, parcelID uint64) error {
	ctx, span := s.tracer.Start(ctx, "registry.TransferLand")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if to.IsZero() {
		return s.reject(pkgerrors.New(pkgerrors.CodeBadRequest, "transfer target identity is required"))
	}
	if err := s.authorize(ctx, caller, parcelID); err != nil {
		return s.reject(err)
	}

	owner, err := s.assets.OwnerOf(ctx, parcelID)
	if err != nil {
		return s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "resolve owner"))
	}
	if err := s.assets.TransferOwnership(ctx, owner, to, parcelID); err != nil {
		return s.reject(pkgerrors.Wrap(err, pkgerrors.CodeInternal, "transfer ownership"))
	}

	s.metrics.ParcelsTransferred.Inc()
	s.logger.InfoContext(ctx, "parcel transferred",
		"parcel_id", parcelID,
		"from", owner,
		"to", to,
	)
	return nil
}

// Approve grants delegate rights on a single parcel, enabling the delegate to
// add documents and transfer on the owner's behalf.
func (s *Service) Approve(ctx context.Context, caller, delegate id.Identity, parcelID uint64) error {
	ctx, span := s.tracer.Start(ctx, "registry.Approve")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assets.Approve(ctx, caller, delegate, parcelID); err != nil {
		return s.reject(s.translateLedger(err, parcelID))
	}
	return nil
}

// authorize fails with UnknownParcel for missing parcels and NotAuthorized
// when caller is neither owner nor approved delegate.
func (s *Service) authorize(ctx context.Context, caller id.Identity, parcelID uint64) error {
	ok, err := s.assets.IsApprovedOrOwner(ctx, caller, parcelID)
	if err != nil {
		return s.translateLedger(err, parcelID)
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotAuthorized, "caller is neither owner nor approved delegate")
	}
	return nil
}

func (s *Service) translateLedger(err error, parcelID uint64) error {
	switch {
	case errors.Is(err, ledger.ErrUnknownToken):
		return pkgerrors.Newf(pkgerrors.CodeUnknownParcel, "parcel %d does not exist", parcelID)
	case errors.Is(err, ledger.ErrNotOwner):
		return pkgerrors.New(pkgerrors.CodeNotAuthorized, "caller does not own parcel")
	default:
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "ledger operation")
	}
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "emit notification failed",
			"type", event.Type,
			"parcel_id", event.ParcelID,
			"error", err,
		)
	}
}

// GetDetails returns the parcel projection, or UnknownParcel.
func (s *Service) GetDetails(ctx context.Context, parcelID uint64) (models.Details, error) {
	parcel, err := s.parcels.Get(ctx, parcelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Details{}, pkgerrors.Newf(pkgerrors.CodeUnknownParcel, "parcel %d does not exist", parcelID)
		}
		return models.Details{}, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "load parcel")
	}
	return models.Details{
		ID:              parcel.ID,
		Location:        parcel.Location,
		SurveyReference: parcel.SurveyReference,
		Verified:        parcel.Verified,
		RegisteredAt:    parcel.RegisteredAt,
		DocumentCount:   len(parcel.Documents),
	}, nil
}

// GetDocuments returns the full append-ordered document trail, or
// UnknownParcel.
func (s *Service) GetDocuments(ctx context.Context, parcelID uint64) ([]string, error) {
	docs, err := s.parcels.Documents(ctx, parcelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeUnknownParcel, "parcel %d does not exist", parcelID)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "load documents")
	}
	return docs, nil
}

// GetLandsByOwner returns owner's current holdings. Never fails: an unknown
// owner yields an empty sequence.
func (s *Service) GetLandsByOwner(_ context.Context, owner id.Identity) []uint64 {
	return s.owners.List(owner)
}

// OwnerOf resolves a parcel's current owner via the ledger.
func (s *Service) OwnerOf(ctx context.Context, parcelID uint64) (id.Identity, error) {
	owner, err := s.assets.OwnerOf(ctx, parcelID)
	if err != nil {
		return id.Zero, s.translateLedger(err, parcelID)
	}
	return owner, nil
}
