package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/quill/internal/auth"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/db"
	"github.com/debemdeboas/quill/internal/janitor"
	"github.com/debemdeboas/quill/internal/logger"
	"github.com/debemdeboas/quill/internal/render"
	"github.com/debemdeboas/quill/internal/repository"
	"github.com/debemdeboas/quill/internal/repository/editor"
	"github.com/debemdeboas/quill/internal/routes"
	"github.com/debemdeboas/quill/internal/service"
	"github.com/debemdeboas/quill/internal/sse"
)

var mainLogger zerolog.Logger

func setupLoggers(l zerolog.Logger) {
	mainLogger = logger.Component(l, "main")
	config.SetLogger(logger.Component(l, "config"))
	db.SetLogger(logger.Component(l, "db"))
	repository.SetLogger(logger.Component(l, "repository"))
	auth.SetLogger(logger.Component(l, "auth"))
	service.SetLogger(logger.Component(l, "service"))
	sse.SetLogger(logger.Component(l, "sse"))
	render.SetLogger(logger.Component(l, "render"))
	janitor.SetLogger(logger.Component(l, "janitor"))
	routes.SetLogger(logger.Component(l, "routes"))
}

// app owns everything main has to shut down.
type app struct {
	db      db.DB
	mirror  *service.Mirror
	janitor *janitor.Janitor
	handler http.Handler
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.Auth)
	if err != nil {
		store.Close()
		return nil, err
	}

	var mirror *service.Mirror
	if cfg.Storage.Archive.Enabled {
		archive, err := repository.NewS3Archive(ctx, cfg.Storage.Archive)
		if err != nil {
			store.Close()
			return nil, err
		}
		mirror = service.NewMirror(archive)
		mainLogger.Info().Str("bucket", cfg.Storage.Archive.Bucket).Msg("Archiving published posts")
	}

	drafts := editor.NewDBRepository(store)
	posts := repository.NewDBPostRepository(store)
	events := sse.NewSSEClients()

	h := &routes.Handlers{
		Auth:   auth.NewService(repository.NewDBUserRepository(store), tokens, cfg.Auth.BcryptCost),
		Drafts: service.NewDraftService(drafts, posts, cfg, service.WithNotifier(events), service.WithMirror(mirror)),
		Posts:  service.NewPostService(posts, cfg.Content, mirror),
		Events: events,
	}

	return &app{
		db:      store,
		mirror:  mirror,
		janitor: janitor.New(drafts),
		handler: routes.NewRouter(h, cfg),
	}, nil
}

func (a *app) Close() {
	a.janitor.Stop()
	a.mirror.Wait()
	if err := a.db.Close(); err != nil {
		mainLogger.Error().Err(err).Msg("Failed to close database")
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %v\n", err)
	}

	boot := logger.New("info", logger.FormatConsole)
	config.SetLogger(logger.Component(boot, "config"))
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	setupLoggers(logger.New(cfg.Logging.Level, cfg.Logging.Format))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to start")
	}
	defer a.Close()

	if cfg.Janitor.Enabled {
		if err := a.janitor.Start(cfg.Janitor.Schedule); err != nil {
			mainLogger.Fatal().Err(err).Msg("Failed to start janitor")
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		mainLogger.Info().Str("addr", srv.Addr).Msg("Server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			mainLogger.Error().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		mainLogger.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
