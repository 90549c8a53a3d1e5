// Command deckd serves the presentation editor engine over HTTP, with a
// SQLite-backed document store and background autosave.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slidekit/slidekit/deckdb"
	"github.com/slidekit/slidekit/httpapi"
	"github.com/slidekit/slidekit/importer"
	"github.com/slidekit/slidekit/pptx"
	"github.com/slidekit/slidekit/resource"
	"github.com/slidekit/slidekit/storage"
	"github.com/slidekit/slidekit/store"
	_ "modernc.org/sqlite"
)

func main() {
	cfg := DefaultConfig()
	if path := env("DECKD_CONFIG", ""); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Listen = env("LISTEN", cfg.Listen)
	cfg.DBPath = env("DECK_DB", cfg.DBPath)
	cfg.LogLevel = env("LOG_LEVEL", cfg.LogLevel)

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := deckdb.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	resources := resource.New(db, resource.Config{Logger: logger})
	if err := resources.Init(ctx); err != nil {
		slog.Error("resource init", "error", err)
		os.Exit(1)
	}
	persist := storage.New(db, resources, storage.Config{
		ChunkSize:  cfg.Storage.ChunkSize,
		MaxRetries: cfg.Storage.MaxRetries,
		Logger:     logger,
	})
	if err := persist.Init(ctx); err != nil {
		slog.Error("storage init", "error", err)
		os.Exit(1)
	}

	// Resume the last saved document when one exists.
	initial, err := persist.Load(ctx)
	if err != nil {
		slog.Error("load document", "error", err)
		os.Exit(1)
	}
	if initial != nil {
		slog.Info("resumed saved document", "title", initial.Title, "slides", len(initial.Slides))
	}

	// The saver reads the store and the store notifies the saver, so the
	// store is built against a forward reference.
	var saver *storage.AutoSaver
	docs := store.New(initial, store.Config{
		HistoryLimit:     cfg.History.Limit,
		MinHistoryLimit:  cfg.History.MinLimit,
		SnapshotInterval: cfg.History.SnapshotInterval,
		OnMutate:         func() { saver.Notify() },
		ReleaseElements: func(ids []string) {
			releaseCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := resources.ReleaseElements(releaseCtx, ids); err != nil {
				logger.Warn("release elements", "error", err)
			}
		},
		Logger: logger,
	})
	saver = storage.NewAutoSaver(func(saveCtx context.Context) error {
		return persist.Save(saveCtx, docs.Document())
	}, storage.AutoSaveOptions{
		Interval:       cfg.AutoSave.Interval,
		SaveOnMutation: cfg.AutoSave.SaveOnMutation,
		Debounce:       cfg.AutoSave.Debounce,
		Logger:         logger,
	})
	go saver.Run(ctx)

	svc := &httpapi.Service{
		Store:     docs,
		Storage:   persist,
		Resources: resources,
		Importer: importer.New(importer.Config{
			CanvasWidth:  cfg.CanvasWidth,
			CanvasHeight: cfg.CanvasHeight,
			Logger:       logger,
		}),
		Parser: pptx.New(pptx.Config{Logger: logger}),
		Logger: logger,
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("deckd listening", "addr", cfg.Listen, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
