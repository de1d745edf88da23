// Package httptransport is the thin HTTP layer over the registry façade. It
// delegates to domain services without embedding business logic so transport
// concerns remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"landregistry/internal/platform/metrics"
	"landregistry/internal/platform/middleware"
)

// NewRouter wires all public endpoints. Mutating and query endpoints require
// a caller identity; health and metrics do not.
func NewRouter(h *Handler, validator middleware.IdentityValidator, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireCaller(validator, logger))

		r.Post("/parcels", h.handleRegister)
		r.Get("/parcels/{id}", h.handleGetDetails)
		r.Get("/parcels/{id}/owner", h.handleGetOwner)
		r.Get("/parcels/{id}/documents", h.handleGetDocuments)
		r.Post("/parcels/{id}/documents", h.handleAddDocument)
		r.Post("/parcels/{id}/verify", h.handleVerify)
		r.Post("/parcels/{id}/transfer", h.handleTransfer)
		r.Post("/parcels/{id}/approve", h.handleApprove)

		r.Get("/owners/{identity}/parcels", h.handleLandsByOwner)

		r.Put("/verifiers/{identity}", h.handleAddVerifier)
		r.Delete("/verifiers/{identity}", h.handleRemoveVerifier)
		r.Get("/verifiers", h.handleListVerifiers)
	})

	return r
}
