// Package app assembles the process: config, logger, store backend,
// recommendation client, orchestrator, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Rusith21/Autism-parent-app/internal/config"
	"github.com/Rusith21/Autism-parent-app/internal/httpapi"
	"github.com/Rusith21/Autism-parent-app/internal/httpapi/handlers"
	"github.com/Rusith21/Autism-parent-app/internal/journal"
	"github.com/Rusith21/Autism-parent-app/internal/observability"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
	"github.com/Rusith21/Autism-parent-app/internal/recommender"
	"github.com/Rusith21/Autism-parent-app/internal/recommender/rechttp"
	"github.com/Rusith21/Autism-parent-app/internal/recommender/recmock"
	"github.com/Rusith21/Autism-parent-app/internal/session"
	"github.com/Rusith21/Autism-parent-app/internal/store"
	"github.com/Rusith21/Autism-parent-app/internal/store/gormkv"
	"github.com/Rusith21/Autism-parent-app/internal/store/memkv"
	"github.com/Rusith21/Autism-parent-app/internal/store/rediskv"
)

type App struct {
	Log    *logger.Logger
	Config *config.Config

	server     *http.Server
	traceFlush func(context.Context) error
	closeStore func() error
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics := observability.InitMetrics()
	traceFlush := observability.InitTracing(context.Background(), log, cfg.Otel, cfg.Env)

	kv, closeStore, err := buildKV(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("init store backend %q: %w", cfg.Store.Backend, err)
	}
	chainStore := store.NewChainStore(kv, log)

	client, err := buildClient(cfg.Recommender)
	if err != nil {
		return nil, fmt.Errorf("init recommender: %w", err)
	}

	recorder, err := buildJournal(kv, log)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	sessions, err := session.New(session.Deps{
		Store:     chainStore,
		Client:    client,
		Journal:   recorder,
		Log:       log,
		TopK:      cfg.Recommender.TopK,
		FollowupN: cfg.Recommender.FollowupN,
	})
	if err != nil {
		return nil, err
	}

	tracingService := ""
	if cfg.Otel.Enabled {
		tracingService = cfg.Otel.ServiceName
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		ChainHandler:   handlers.NewChainHandler(sessions, metrics, log),
		JournalHandler: handlers.NewJournalHandler(recorder),
		HealthHandler:  handlers.NewHealthHandler(kv),
		Log:            log,
		Metrics:        metrics,
		TracingService: tracingService,
	})

	log.Info("app wired",
		"env", cfg.Env,
		"store_backend", cfg.Store.Backend,
		"recommender_mode", cfg.Recommender.Mode,
		"addr", cfg.HTTP.Addr,
	)

	return &App{
		Log:        log,
		Config:     cfg,
		server:     httpapi.NewServer(cfg.HTTP, router),
		traceFlush: traceFlush,
		closeStore: closeStore,
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests within the configured shutdown budget.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()
	a.Log.Info("listening", "addr", a.server.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
		a.close(shutdownCtx)
		return nil
	case err := <-errCh:
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.close(flushCtx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) close(ctx context.Context) {
	if a.traceFlush != nil {
		if err := a.traceFlush(ctx); err != nil {
			a.Log.Warn("trace flush failed", "error", err)
		}
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			a.Log.Warn("store close failed", "error", err)
		}
	}
	a.Log.Sync()
}

func buildKV(cfg config.StoreConfig) (store.KV, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return memkv.New(), nil, nil
	case "sqlite":
		s, err := gormkv.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "postgres":
		s, err := gormkv.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "redis":
		s, err := rediskv.New(rediskv.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func buildClient(cfg config.RecommenderConfig) (recommender.Client, error) {
	switch cfg.Mode {
	case "http":
		return rechttp.New(cfg)
	case "mock":
		return recmock.New(), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// buildJournal persists finish history only when a SQL store is active;
// other backends get the nop recorder.
func buildJournal(kv store.KV, log *logger.Logger) (journal.Recorder, error) {
	gs, ok := kv.(*gormkv.Store)
	if !ok {
		return journal.NewNopRecorder(), nil
	}
	return journal.NewGormRecorder(gs.DB(), log)
}
