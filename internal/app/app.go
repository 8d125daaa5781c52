package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"promopulse/internal/config"
	"promopulse/internal/errors"
	"promopulse/internal/exporter"
	"promopulse/internal/infrastructure"
	custommw "promopulse/internal/middleware"
	"promopulse/internal/services"
	transport "promopulse/internal/transport/http"
	ws "promopulse/internal/websocket"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

// Application wires configuration, services, transports, and
// observability into one runnable server.
type Application struct {
	Config *config.Config
	Router *chi.Mux
	Server *http.Server
	Logger *slog.Logger

	Hub           *ws.Hub
	Datasets      *services.DatasetService
	Analytics     *services.AnalyticsService
	Snapshots     *services.SnapshotService
	OTelProviders *infrastructure.OTelProviders
}

// New builds the application container.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := infrastructure.InitializeLogger(cfg.Logging)
	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	providers, err := infrastructure.InitializeOTel(logger)
	if err != nil {
		return nil, fmt.Errorf("initialize opentelemetry: %w", err)
	}

	hub := ws.NewHub(logger)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Hub:           hub,
		Datasets:      services.NewDatasetService(cfg.Upload.MaxRows, hub, logger),
		Analytics:     services.NewAnalyticsService(logger),
		Snapshots:     services.NewSnapshotService(exporter.New(cfg.Export.Dir), logger, hub),
		OTelProviders: providers,
	}
	app.setupRouter()

	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

// setupRouter configures the HTTP router. The websocket route stays
// outside the full middleware group so nothing wraps its
// ResponseWriter before the upgrade.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)

	r.Get("/ws", a.handleWebSocket)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.Tracing(a.OTelProviders))
		r.Use(custommw.HTTPMetrics)
		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(render.SetContentType(render.ContentTypeJSON))

		errorHandler := errors.NewErrorHandler(a.Logger)
		datasetHandler := transport.NewDatasetHandler(
			a.Datasets, a.Analytics, a.Config.Upload.MaxBytes, a.Logger, errorHandler)
		snapshotHandler := transport.NewSnapshotHandler(
			a.Snapshots, a.Datasets, a.Logger, errorHandler)
		healthHandler := transport.NewHealthHandler(Version)

		r.Get("/healthz", healthHandler.HealthCheck)
		r.Route("/api", func(r chi.Router) {
			r.Mount("/datasets", datasetHandler.Routes())
			r.Post("/datasets/{datasetID}/snapshots", snapshotHandler.Create)
			r.Mount("/snapshots", snapshotHandler.Routes())
		})
	})

	a.Router = r
}

func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := ws.ServeWS(a.Hub, a.Logger, w, r); err != nil {
		a.Logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
	}
}

// Run starts the hub and HTTP server and blocks until an interrupt or
// a server failure, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.Hub.Run()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		a.Hub.Stop()
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("opentelemetry shutdown", slog.String("error", err.Error()))
		}
		return nil
	})

	err := g.Wait()
	a.Logger.Info("application stopped", slog.String("uptime", time.Since(startTime).String()))
	return err
}

var startTime = time.Now()
