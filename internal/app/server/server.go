package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"peopleops/internal/domain/appraisal"
	"peopleops/internal/domain/audit"
	"peopleops/internal/domain/document"
	"peopleops/internal/domain/employee"
	"peopleops/internal/domain/identity"
	"peopleops/internal/domain/project"
	"peopleops/internal/domain/reports"
	"peopleops/internal/domain/warning"
	"peopleops/internal/platform/blob"
	"peopleops/internal/platform/config"
	cryptoutil "peopleops/internal/platform/crypto"
	"peopleops/internal/platform/db"
	"peopleops/internal/platform/metrics"
	"peopleops/internal/transport/http/api"
	appraisalhandler "peopleops/internal/transport/http/handlers/appraisals"
	audithandler "peopleops/internal/transport/http/handlers/audit"
	authhandler "peopleops/internal/transport/http/handlers/auth"
	documenthandler "peopleops/internal/transport/http/handlers/documents"
	employeehandler "peopleops/internal/transport/http/handlers/employees"
	projecthandler "peopleops/internal/transport/http/handlers/projects"
	reporthandler "peopleops/internal/transport/http/handlers/reports"
	warninghandler "peopleops/internal/transport/http/handlers/warnings"
	"peopleops/internal/transport/http/middleware"
)

// App is the fully wired application: pool, services and router. Tests stand
// one up against a scratch database and drive the router directly.
type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config invalid: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key invalid: %w", err)
	}
	blobs, err := blob.NewStore(cfg.BlobDir, crypto)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("blob store init failed: %w", err)
	}
	collector := metrics.New()

	identities := identity.NewService(identity.NewStore(pool))
	employees := employee.NewService(employee.NewStore(pool))
	documents := document.NewService(document.NewStore(pool), blobs, employees)
	warnings := warning.NewService(warning.NewStore(pool), identities, documents)
	appraisals := appraisal.NewService(appraisal.NewStore(pool))
	projects := project.NewService(project.NewStore(pool))
	reportsSvc := reports.NewService(reports.NewStore(pool))
	auditSvc := audit.New(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, identities))
	if cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	}

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

	if cfg.MetricsEnabled {
		router.With(middleware.RequireAuth, middleware.RequirePermission(identity.PermSystemAdmin)).
			Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(identities, cfg.JWTSecret, cfg.TokenTTL, crypto).RegisterRoutes(r)
		employeehandler.NewHandler(employees, identities, auditSvc).RegisterRoutes(r)
		warninghandler.NewHandler(warnings, identities, auditSvc).RegisterRoutes(r)
		appraisalhandler.NewHandler(appraisals, identities, auditSvc).RegisterRoutes(r)
		projecthandler.NewHandler(projects, identities, auditSvc).RegisterRoutes(r)
		documenthandler.NewHandler(documents, identities, auditSvc, cfg.MaxUploadBytes, cfg.UploadContentTypes).RegisterRoutes(r)
		reporthandler.NewHandler(reportsSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
