package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"landregistry/internal/platform/middleware"
	"landregistry/internal/registry/models"
	id "landregistry/pkg/domain"
	pkgerrors "landregistry/pkg/domain-errors"
)

// RegistryService is the slice of the registry façade the transport needs.
type RegistryService interface {
	Register(ctx context.Context, caller id.Identity, location, surveyRef, initialDocRef string) (uint64, error)
	Verify(ctx context.Context, caller id.Identity, parcelID uint64) error
	AddDocument(ctx context.Context, caller id.Identity, parcelID uint64, documentRef string) error
	TransferLand(ctx context.Context, caller, to id.Identity, parcelID uint64) error
	Approve(ctx context.Context, caller, delegate id.Identity, parcelID uint64) error
	GetDetails(ctx context.Context, parcelID uint64) (models.Details, error)
	GetDocuments(ctx context.Context, parcelID uint64) ([]string, error)
	GetLandsByOwner(ctx context.Context, owner id.Identity) []uint64
	OwnerOf(ctx context.Context, parcelID uint64) (id.Identity, error)
}

// VerifierService is the slice of the verifier registry the transport needs.
type VerifierService interface {
	Add(ctx context.Context, caller, identity id.Identity) error
	Remove(ctx context.Context, caller, identity id.Identity) error
	List(ctx context.Context) ([]id.Identity, error)
}

// HealthChecker reports dependency connectivity for /healthz.
type HealthChecker func(ctx context.Context) error

// Handler handles the registry endpoints.
type Handler struct {
	registry  RegistryService
	verifiers VerifierService
	health    []HealthChecker
	logger    *slog.Logger
}

func NewHandler(registry RegistryService, verifiers VerifierService, logger *slog.Logger, health ...HealthChecker) *Handler {
	return &Handler{
		registry:  registry,
		verifiers: verifiers,
		health:    health,
		logger:    logger,
	}
}

type registerRequest struct {
	Location        string `json:"location"`
	SurveyReference string `json:"surveyReference"`
	DocumentRef     string `json:"documentRef"`
}

type registerResponse struct {
	ID uint64 `json:"id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	parcelID, err := h.registry.Register(r.Context(), middleware.Caller(r.Context()), req.Location, req.SurveyReference, req.DocumentRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{ID: parcelID})
}

func (h *Handler) handleGetDetails(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := parcelParam(w, r)
	if !ok {
		return
	}
	details, err := h.registry.GetDetails(r.Context(), parcelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := parcelParam(w, r)
	if !ok {
		return
	}
	owner, err := h.registry.OwnerOf(r.Context(), parcelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": owner.String()})
}

func (h *Handler) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := parcelParam(w, r)
	if !ok {
		return
	}
	docs, err := h.registry.GetDocuments(r.Context(), parcelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": docs})
}

type documentRequest struct {
	DocumentRef string `json:"documentRef"`
}

func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := parcelParam(w, r)
	if !ok {
		return
	}
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.registry.AddDocument(r.Context(), middleware.Caller(r.Context()), parcelID, req.DocumentRef); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := parcelParam(w, r)
	if !ok {
		return
	}
	if err := h.registry.Verify(r.Context(), middleware.Caller(r.Context()), parcelID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	To string `json:"to"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := parcelParam(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	to, valid := id.ParseIdentity(req.To)
	if !valid {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "transfer target is required"))
		return
	}
	if err := h.registry.TransferLand(r.Context(), middleware.Caller(r.Context()), to, parcelID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type approveRequest struct {
	Delegate string `json:"delegate"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := parcelParam(w, r)
	if !ok {
		return
	}
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	// A blank delegate clears the current approval.
	delegate, _ := id.ParseIdentity(req.Delegate)
	if err := h.registry.Approve(r.Context(), middleware.Caller(r.Context()), delegate, parcelID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLandsByOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := id.ParseIdentity(chi.URLParam(r, "identity"))
	if !ok {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "owner identity is required"))
		return
	}
	holdings := h.registry.GetLandsByOwner(r.Context(), owner)
	writeJSON(w, http.StatusOK, map[string][]uint64{"parcelIds": holdings})
}

func (h *Handler) handleAddVerifier(w http.ResponseWriter, r *http.Request) {
	identity, ok := id.ParseIdentity(chi.URLParam(r, "identity"))
	if !ok {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "verifier identity is required"))
		return
	}
	if err := h.verifiers.Add(r.Context(), middleware.Caller(r.Context()), identity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveVerifier(w http.ResponseWriter, r *http.Request) {
	identity, ok := id.ParseIdentity(chi.URLParam(r, "identity"))
	if !ok {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "verifier identity is required"))
		return
	}
	if err := h.verifiers.Remove(r.Context(), middleware.Caller(r.Context()), identity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListVerifiers(w http.ResponseWriter, r *http.Request) {
	members, err := h.verifiers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]id.Identity{"verifiers": members})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.health {
		if err := check(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func parcelParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	parcelID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || parcelID == 0 {
		writeError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid parcel id"))
		return 0, false
	}
	return parcelID, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := pkgerrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(pkgerrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": string(code)})
}
