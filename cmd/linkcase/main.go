package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/linkcase/linkcase/auth"
	"github.com/linkcase/linkcase/bookmarks"
	"github.com/linkcase/linkcase/config"
	"github.com/linkcase/linkcase/notify"
	"github.com/linkcase/linkcase/rest"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	configPath := flag.String("config", os.Getenv("LINKCASE_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "linkcase: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DB.DSN)
	if err != nil {
		return err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := auth.CreateSchema(ctx, db); err != nil {
		return err
	}
	if err := bookmarks.CreateSchema(ctx, db); err != nil {
		return err
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	logger := slogAdapter{log}

	dispatcher := notify.NewDispatcher(notify.LogSender{
		BaseURL: cfg.Notify.BaseURL,
		Logger:  logger,
	}, logger)
	defer dispatcher.Close()

	minter := auth.NewTokenMint(repo).WithLogger(logger)
	backend := auth.NewBackend(repo, cfg).WithLogger(logger)

	app := rest.NewServer(rest.App{
		Backend: backend,
		Auth: rest.NewAuthController(repo, minter, cfg, dispatcher,
			rest.WithAuthLogger(logger),
			rest.WithAuthDebug(cfg.Debug()),
		),
		Profile:   rest.NewProfileController(repo),
		Bookmarks: rest.NewBookmarksController(bookmarks.NewLinksRepository(db), bookmarks.NewCollectionsRepository(db)),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", cfg.Server.Address, "env", cfg.Env)
		errCh <- app.Listen(cfg.Server.Address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout)
	}
}

func setupLogger(env string) *slog.Logger {
	var handler slog.Handler
	switch env {
	case "local", "dev":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler)
}

// slogAdapter bridges slog to the message-plus-attrs logger interfaces the
// other packages accept.
type slogAdapter struct {
	log *slog.Logger
}

func (l slogAdapter) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l slogAdapter) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l slogAdapter) Error(msg string, args ...any) { l.log.Error(msg, args...) }
