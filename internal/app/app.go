// Package app wires every dependency together and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/parvej/showcase/internal/api"
	"github.com/parvej/showcase/internal/auth"
	"github.com/parvej/showcase/internal/domain/catalog"
	"github.com/parvej/showcase/internal/remotestore"
	"github.com/parvej/showcase/internal/remotestore/postgres"
	"github.com/parvej/showcase/pkg/debounce"
	"github.com/parvej/showcase/pkg/health"
	"github.com/parvej/showcase/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Document store: PostgreSQL when configured, in-memory otherwise.
	var (
		remote remotestore.Client
		bounds api.PriceBoundser
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		pg := postgres.New(pool)
		remote, bounds = pg, pg
	} else {
		lg.Warn("No database URL configured, using in-memory document store")
		remote = remotestore.NewMemory()
	}

	// Catalog state store: load the full snapshot before serving.
	store := catalog.NewStore(remote)
	if err := store.LoadAll(ctx); err != nil {
		return errors.Wrap(err, "initial catalog load")
	}

	// Snapshot refresher: admin writes schedule a reload; bursts collapse
	// into one reload after the quiet period.
	refreshCtx := zctx.Base(ctx, lg.Named("refresh"))
	refresher := debounce.New(cfg.RefreshDebounce, func() {
		reloadCtx, cancel := context.WithTimeout(refreshCtx, 30*time.Second)
		defer cancel()
		if err := store.LoadAll(reloadCtx); err != nil {
			zctx.From(refreshCtx).Error("Snapshot reload failed", zap.Error(err))
		}
	})
	defer refresher.Stop()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("document-store", 5*time.Second, func(ctx context.Context) error {
		_, err := remote.List(ctx, catalog.CollectionsRemote)
		return err
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Session authority and API handler.
	sessions := auth.NewService(auth.Config{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		JWTSecret:         []byte(cfg.JWTSecret),
		SessionTTL:        cfg.SessionTTL,
	})
	handler := api.NewHandler(api.Config{
		Bounds:   bounds,
		OnMutate: refresher.Call,
	}, store, sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", handler.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("showcase-api"),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
