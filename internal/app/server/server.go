package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfhub/internal/domain/audit"
	"perfhub/internal/domain/auth"
	"perfhub/internal/domain/coaching"
	"perfhub/internal/domain/core"
	"perfhub/internal/domain/pip"
	"perfhub/internal/domain/settings"
	"perfhub/internal/domain/termination"
	"perfhub/internal/platform/config"
	cryptoutil "perfhub/internal/platform/crypto"
	"perfhub/internal/platform/db"
	"perfhub/internal/platform/jobs"
	"perfhub/internal/platform/metrics"
	adminhandler "perfhub/internal/transport/http/handlers/admin"
	authhandler "perfhub/internal/transport/http/handlers/auth"
	coachinghandler "perfhub/internal/transport/http/handlers/coaching"
	corehandler "perfhub/internal/transport/http/handlers/core"
	piphandler "perfhub/internal/transport/http/handlers/pip"
	terminationhandler "perfhub/internal/transport/http/handlers/termination"
	"perfhub/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption setup failed: %v", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	auditSvc := audit.New(pool)
	settingsStore := settings.NewStore(pool)
	coreSvc := core.NewService(core.NewStore(pool))
	pipStore := pip.NewStore(pool)
	pipSvc := pip.NewService(pipStore, auditSvc, collector)
	termSvc := termination.NewService(pipStore, termination.NewStore(pool), auditSvc, cryptoSvc,
		collector, cfg.LetterDir, cfg.DryRun)
	coachingSvc := coaching.NewService(pipStore, coaching.NewStore(pool), auditSvc)

	jobSvc := jobs.New(pool, cfg)
	jobSvc.Start(ctx, func(ctx context.Context) (any, error) {
		snapshot, err := settingsStore.Get(ctx)
		if err != nil {
			return nil, err
		}
		return pipSvc.EvaluateCandidates(ctx, snapshot, "system", "scheduled-sweep")
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMin, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(auth.NewStore(pool), auditSvc, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		corehandler.NewHandler(coreSvc).RegisterRoutes(r)
		piphandler.NewHandler(pipSvc, settingsStore).RegisterRoutes(r)
		terminationhandler.NewHandler(termSvc, settingsStore).RegisterRoutes(r)
		coachinghandler.NewHandler(coachingSvc, settingsStore).RegisterRoutes(r)
		adminhandler.NewHandler(settingsStore, auditSvc, collector).RegisterRoutes(r)
	})

	slog.Info("server listening", "addr", cfg.Addr, "dryRun", cfg.DryRun)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
