package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"landregistry/internal/events"
	"landregistry/internal/ledger"
	"landregistry/internal/platform/config"
	"landregistry/internal/platform/httpserver"
	"landregistry/internal/platform/logger"
	"landregistry/internal/platform/metrics"
	"landregistry/internal/platform/middleware"
	platformredis "landregistry/internal/platform/redis"
	"landregistry/internal/registry/ownerindex"
	registryservice "landregistry/internal/registry/service"
	registrystore "landregistry/internal/registry/store"
	httptransport "landregistry/internal/transport/http"
	"landregistry/internal/verifier"
	id "landregistry/pkg/domain"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	assets := ledger.NewMemoryLedger()

	// Parcel store: memory by default, Postgres when a DSN is configured.
	var parcels registrystore.ParcelStore = registrystore.NewMemoryParcelStore()
	var healthChecks []httptransport.HealthChecker
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			return
		}
		defer db.Close()
		pg := registrystore.NewPostgresParcelStore(db)
		if err := pg.Bootstrap(ctx); err != nil {
			log.Error("bootstrap postgres schema", "error", err)
			return
		}
		// Parcels outlive the process; the ledger counter must not hand
		// out an id a persisted parcel already holds.
		maxID, err := pg.MaxID(ctx)
		if err != nil {
			log.Error("read max parcel id", "error", err)
			return
		}
		assets.Resume(maxID)
		parcels = pg
		healthChecks = append(healthChecks, db.PingContext)
	}

	// Verifier membership: memory by default, Redis when configured.
	var verifierStore verifier.Store = verifier.NewMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
		verifierStore = verifier.NewRedisStore(redisClient.Client)
		healthChecks = append(healthChecks, redisClient.Health)
	}

	group, ctx := errgroup.WithContext(ctx)

	// Notifications: recorded in process by default, shipped to Kafka when
	// brokers are configured. The channel keeps the serialized core from
	// blocking on the broker.
	var publisher events.Publisher = events.NewRecorder()
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			return
		}
		defer kafka.Close()
		if err := kafka.EnsureTopic(ctx, 1); err != nil {
			log.Error("ensure kafka topic", "error", err)
			return
		}
		inbox := make(chan events.Event, 1024)
		publisher = events.NewChannelPublisher(inbox)
		worker := events.NewWorker(kafka, inbox, log)
		group.Go(func() error {
			if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	controller := id.Identity(cfg.Controller)
	verifiers := verifier.NewService(controller, verifierStore, publisher, m, log)
	registry := registryservice.NewService(
		parcels,
		ownerindex.New(),
		assets,
		verifiers,
		publisher,
		m,
		log,
	)

	var validator middleware.IdentityValidator
	if cfg.JWTSigningKey != "" {
		validator = middleware.NewHMACValidator(cfg.JWTSigningKey)
	}

	handler := httptransport.NewHandler(registry, verifiers, log, healthChecks...)
	router := httptransport.NewRouter(handler, validator, m, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting land registry", "addr", cfg.Addr, "controller", cfg.Controller)

	group.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
	}
}
