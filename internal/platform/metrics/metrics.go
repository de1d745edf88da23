package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments for the registry.
type Metrics struct {
	ParcelsRegistered  prometheus.Counter
	ParcelsVerified    prometheus.Counter
	ParcelsTransferred prometheus.Counter
	DocumentsAdded     prometheus.Counter
	VerifierChanges    *prometheus.CounterVec
	RejectedOps        *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates and registers all instruments against reg. Tests pass a fresh
// registry; main passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ParcelsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "land_registry_parcels_registered_total",
			Help: "Total number of parcels registered.",
		}),
		ParcelsVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "land_registry_parcels_verified_total",
			Help: "Total number of parcels verified.",
		}),
		ParcelsTransferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "land_registry_parcels_transferred_total",
			Help: "Total number of parcel ownership transfers.",
		}),
		DocumentsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "land_registry_documents_added_total",
			Help: "Total number of documents appended to parcel trails.",
		}),
		VerifierChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "land_registry_verifier_changes_total",
			Help: "Verifier authorization list changes by action.",
		}, []string{"action"}),
		RejectedOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "land_registry_rejected_operations_total",
			Help: "Operations rejected by the registry, by error code.",
		}, []string{"code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "land_registry_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
