// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/loader"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/noteservice"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// stack is the wired read pipeline shared by the HTTP and MCP front ends.
type stack struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	loader *loader.Loader
	db     *index.DB
	svc    *noteservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// bootstrap loads the collection once and mirrors it into the index. An
// unreadable content directory aborts startup.
func bootstrap(ctx context.Context, cfg *Config, logger *slog.Logger) (*stack, error) {
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("sqlite_dsn", cfg.SQLite.DSN),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Content.Dir, cfg.Content.Reserved)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	l := loader.New(store, cfg.Curation.Resolve(), cfg.Content.LoaderOptions(), logger)
	if _, err := l.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}

	db, err := index.Open(cfg.SQLite.DSN)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	md := render.New(renderOptions(cfg.Render)...)
	svc := noteservice.NewService(l, db, md, noteservice.WithLogger(logger))
	stats, err := svc.SyncIndex(ctx, true)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initial sync: %w", err)
	}
	logger.Info("Notes loaded",
		slog.Int("indexed", stats.Upserted),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("removed", stats.Removed))

	return &stack{
		cfg:    cfg,
		logger: logger,
		store:  store,
		loader: l,
		db:     db,
		svc:    svc,
	}, nil
}

func renderOptions(c RenderConfig) []render.Option {
	var opts []render.Option
	if c.UnsafeHTML {
		opts = append(opts, render.WithUnsafeHTML())
	}
	if c.HardWraps {
		opts = append(opts, render.WithHardWraps())
	}
	return opts
}

// refresh reloads the collection after a batch of file changes and brings
// the index in line with it before SSE clients are told to refetch.
// Full-text and tag queries also resync on their own when files change.
func (s *stack) refresh(ctx context.Context, changes []index.Change) error {
	s.loader.Invalidate()
	stats, err := s.svc.SyncIndex(ctx, true)
	if err != nil {
		return err
	}
	s.logger.Info("Notes reloaded",
		slog.Int("changes", len(changes)),
		slog.Int("indexed", stats.Upserted),
		slog.Int("removed", stats.Removed))
	return nil
}

// watch keeps the collection fresh until ctx ends, calling after for every
// successfully applied batch.
func (s *stack) watch(ctx context.Context, after func([]index.Change)) error {
	if !s.cfg.Content.Watch {
		return nil
	}
	return index.Watch(ctx, s.store.Root(), s.store.Eligible, s.logger, func(changes []index.Change) {
		if err := s.refresh(ctx, changes); err != nil {
			s.logger.Error("reload failed", slog.String("error", err.Error()))
			return
		}
		if after != nil {
			after(changes)
		}
	})
}

// newHTTPHandler builds the root router: middleware, health checks and the
// API under /api.
func newHTTPHandler(s *stack, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := s.svc.Categories(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"content unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	var events http.Handler
	if broker != nil {
		events = broker
	}
	r.Mount("/api", api.NewRouter(s.svc, s.cfg.Auth.AuthEnabled(), s.cfg.Auth.Token, events))
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	s, err := bootstrap(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.db.Close()

	broker := sse.NewBroker()
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(s, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Content watcher: reload, resync, then notify SSE clients.
	g.Go(func() error {
		err := s.watch(gCtx, func(changes []index.Change) {
			for _, c := range changes {
				broker.PublishChange(c.Kind, c.Name)
			}
		})
		if err != nil {
			logger.Error("watcher failed, index resyncs on query only", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// SSE streams only end when the broker closes.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the read-only MCP tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger

	s, err := bootstrap(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer s.db.Close()

	srv := mcpserver.New(s.svc, app.version)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.watch(gCtx, nil); err != nil {
			logger.Error("watcher failed, index resyncs on query only", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("MCP server starting on stdio")
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}
