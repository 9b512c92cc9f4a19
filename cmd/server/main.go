// Command server runs the lifeos HTTP API and serves the web build of the UI.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"lifeos/internal/api"
	"lifeos/internal/config"
	"lifeos/internal/db"
	"lifeos/internal/logger"
	"lifeos/pkg/inbox"
	"lifeos/pkg/notify"
	"lifeos/pkg/planner"
	"lifeos/pkg/reference"
	"lifeos/pkg/task"
	"lifeos/pkg/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg := logger.New(cfg.Log)

	if err := run(cfg, lg); err != nil {
		lg.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx, cfg.Database.DSN); err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	items := inbox.NewPgStore(pool)
	tasks := task.NewPgStore(pool)
	refs := reference.NewPgStore(pool)

	server := api.New(lg, api.Deps{
		Triage:     triage.NewService(lg, items, tasks, refs, db.NewTxManager(pool)),
		Planner:    planner.New(tasks, lg),
		Tasks:      tasks,
		Inbox:      items,
		References: refs,
		DB:         pool,
		Changes:    notify.NewBus(),
		WasmDir:    cfg.Server.WasmDir,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("lifeos listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		lg.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
