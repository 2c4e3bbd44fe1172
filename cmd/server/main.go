package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/janisto/devconnector-api/internal/http/health"
	"github.com/janisto/devconnector-api/internal/http/v1/routes"
	"github.com/janisto/devconnector-api/internal/platform/auth"
	"github.com/janisto/devconnector-api/internal/platform/config"
	"github.com/janisto/devconnector-api/internal/platform/firebase"
	applog "github.com/janisto/devconnector-api/internal/platform/logging"
	appmiddleware "github.com/janisto/devconnector-api/internal/platform/middleware"
	"github.com/janisto/devconnector-api/internal/platform/respond"
	githubsvc "github.com/janisto/devconnector-api/internal/service/github"
	profilesvc "github.com/janisto/devconnector-api/internal/service/profile"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

// dependencies are the collaborators the router is built from.
type dependencies struct {
	verifier auth.Verifier
	profiles profilesvc.Service
	github   githubsvc.Service
	checks   map[string]health.Check
	origins  []string
}

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		applog.LogFatal(context.Background(), "invalid configuration", err)
	}
	applog.SetProjectID(cfg.FirebaseProjectID)

	deps, cleanup, err := buildDependencies(context.Background(), cfg)
	if err != nil {
		applog.LogFatal(context.Background(), "startup failed", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(deps),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageBackend),
			zap.String("auth", cfg.AuthProvider),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		cleanup()
		os.Exit(1)
	case <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		applog.LogError(ctx, "server shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// buildDependencies connects the configured backends. cleanup closes them.
func buildDependencies(ctx context.Context, cfg *config.Config) (dependencies, func(), error) {
	deps := dependencies{
		checks:  map[string]health.Check{},
		origins: cfg.Origins(),
	}
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				applog.LogWarn(context.Background(), "close failed", zap.Error(err))
			}
		}
		closers = nil
	}

	var clients *firebase.Clients
	if cfg.NeedsFirebase() {
		var err error
		clients, err = firebase.InitializeClients(ctx, firebase.Config{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.GoogleApplicationCredentials,
			Auth:            cfg.AuthProvider == config.AuthFirebase,
			Firestore:       cfg.StorageBackend == config.StorageFirestore,
		})
		if err != nil {
			return deps, func() {}, err
		}
		closers = append(closers, clients.Close)
	}

	switch cfg.StorageBackend {
	case config.StorageFirestore:
		deps.profiles = profilesvc.NewFirestoreStore(clients.Firestore)
		deps.checks["firestore"] = func(ctx context.Context) error {
			_, err := clients.Firestore.Collection("profiles").Limit(1).Documents(ctx).Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
	default:
		deps.profiles = profilesvc.NewMemoryStore()
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			cleanup()
			return deps, func() {}, errors.Wrap(err, "parse REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		closers = append(closers, rdb.Close)
		deps.profiles = profilesvc.NewCachedService(deps.profiles, rdb, cfg.CacheTTL)
		deps.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	switch cfg.AuthProvider {
	case config.AuthJWT:
		deps.verifier = auth.NewJWTVerifier(cfg.JWTSecret, auth.DefaultTokenLifetime)
	default:
		deps.verifier = auth.NewFirebaseVerifier(clients.Auth)
	}

	deps.github = githubsvc.NewClient(nil, githubsvc.WithToken(cfg.GitHubToken))
	return deps, cleanup, nil
}

func newRouter(deps dependencies) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security("/api-docs"),
		appmiddleware.Vary(),
		appmiddleware.CORS(deps.origins),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		// Without a trusted proxy, clients can spoof their IP address.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(deps.checks))

	cfg := huma.DefaultConfig("DevConnector API", Version)
	cfg.DocsPath = "/api-docs"
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Firebase ID token or API-issued JWT. x-auth-token is accepted as well.",
		},
	}
	api := humachi.New(router, cfg)

	// Add CBOR content type to OpenAPI requests and responses
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	routes.Register(api, deps.verifier, deps.profiles, deps.github)
	return router
}
