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

	"github.com/starford/scraps/internal/api"
	"github.com/starford/scraps/internal/build"
	"github.com/starford/scraps/internal/scrapservice"
	"github.com/starford/scraps/internal/scrapset"
	"github.com/starford/scraps/internal/sse"
	"github.com/starford/scraps/internal/watch"
)

// Serve builds the site, serves it with the REST API and rebuilds on every
// change under the scraps directory until ctx is cancelled or a signal
// arrives.
func Serve(ctx context.Context, opts ...Option) error {
	rt, err := newWiring(os.Stdout, opts...)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, logger := rt.cfg, rt.logger

	builder, err := rt.builder()
	if err != nil {
		return err
	}
	gen, err := rt.generator()
	if err != nil {
		return err
	}

	rt.syncStamps(ctx)
	svc := scrapservice.NewCachedService(rt.loader, cfg.Site.ParsedBaseURL())
	set, err := svc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("load scraps: %w", err)
	}
	if _, err := builder.Build(ctx, set); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Mount("/api", api.NewRouter(svc, gen, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	r.Handle("/*", http.FileServer(http.Dir(cfg.Public.Path)))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild on change and notify subscribers.
	g.Go(func() error {
		return watch.Watch(gCtx, rt.scraps.Root(), watch.DefaultDebounce, logger, func(ctx context.Context, paths []string) {
			rebuild(ctx, rt, svc, builder, broker, paths)
		})
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
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

// errShutdown stops the watcher once the HTTP server is down.
var errShutdown = errors.New("shutdown")

func rebuild(ctx context.Context, rt *wiring, svc *scrapservice.Service, builder *build.Builder, broker *sse.Broker, paths []string) {
	rt.syncStamps(ctx)
	set, err := svc.Refresh(ctx)
	if err != nil {
		rt.logger.Error("reload failed", slog.String("error", err.Error()))
		return
	}
	stats, err := builder.Build(ctx, set)
	if err != nil {
		rt.logger.Error("rebuild failed", slog.String("error", err.Error()))
		return
	}
	broker.PublishRebuilt(sse.Rebuilt{Paths: paths, Scraps: stats.Scraps, Tags: stats.Tags})
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// loadSet syncs the stamp cache and loads every scrap once.
func loadSet(ctx context.Context, rt *wiring) (*scrapset.Set, error) {
	rt.syncStamps(ctx)
	set, err := rt.loader.Load(ctx, rt.cfg.Site.ParsedBaseURL())
	if err != nil {
		return nil, fmt.Errorf("load scraps: %w", err)
	}
	return set, nil
}
