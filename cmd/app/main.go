package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_tracker/internal/cache"
	"task_tracker/internal/config"
	"task_tracker/internal/db"
	"task_tracker/internal/events"
	httpServer "task_tracker/internal/http"
	"task_tracker/internal/http/handlers"
	"task_tracker/internal/llm"
	"task_tracker/internal/logger"
	"task_tracker/internal/repository"
	"task_tracker/internal/service"
	"task_tracker/internal/telemetry"
	"task_tracker/internal/ws"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const serviceName = "task-tracker"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, serviceName, cfg.Version)
	if err != nil {
		logger.Fatal("failed to set up tracing", "error", err)
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("failed to apply migrations", "error", err)
		}
	}

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	checks := map[string]handlers.Check{}

	gen, err := llm.New(ctx, cfg.Enrichment)
	if err != nil {
		logger.Fatal("failed to create generator", "provider", cfg.Enrichment.Provider, "error", err)
	}
	if gen == nil {
		logger.Warn("enrichment disabled, useAI requests will return unenriched tasks")
	} else {
		genCache, closeCache := buildCache(ctx, cfg.Cache, checks)
		defer closeCache()
		gen = llm.NewCached(gen, genCache, cfg.Cache.TTL)
		logger.Info("enrichment enabled", "generator", gen.Name(), "timeout", cfg.Enrichment.Timeout.String())
	}

	hub := ws.NewHub()
	publishers := []events.Publisher{hub}
	if cfg.NATSURL != "" {
		bus, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn("nats unavailable, events stay local", "error", err)
		} else {
			defer func() { _ = bus.Close() }()
			publishers = append(publishers, bus)
			checks["nats"] = func(context.Context) error {
				if !bus.Connected() {
					return errors.New("not connected")
				}
				return nil
			}
		}
	}
	pub := events.NewMulti(publishers...)

	taskRepo := repository.NewTaskRepository(dbPool)
	subtaskRepo := repository.NewSubtaskRepository(dbPool)
	runRepo := repository.NewEnrichmentRepository(dbPool)

	enricher := service.NewEnrichmentService(taskRepo, subtaskRepo, runRepo, gen, pub, cfg.Enrichment.Timeout)
	tasks := service.NewTaskService(taskRepo, subtaskRepo, runRepo, pub)
	jwt := service.NewJWT(cfg.JWTSecret)

	router := httpServer.NewRouter(httpServer.Deps{
		Handler:       handlers.NewHandler(enricher, tasks),
		Health:        handlers.NewHealthHandler(dbPool.Ping, checks, cfg.Version),
		JWT:           jwt,
		Hub:           hub,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}

	logger.Info("server exited")
}

// buildCache returns nil when caching is off. Redis is optional: when it
// cannot be reached only the in-process level is used.
func buildCache(ctx context.Context, cfg config.Cache, checks map[string]handlers.Check) (cache.Cache, func()) {
	if cfg.TTL <= 0 {
		return nil, func() {}
	}

	local, err := cache.NewLocal(cfg.L1MaxBytes)
	if err != nil {
		logger.Warn("generator cache disabled", "error", err)
		return nil, func() {}
	}
	if cfg.RedisAddr == "" {
		return local, local.Close
	}

	shared, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "tasktracker:")
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache only", "addr", cfg.RedisAddr, "error", err)
		return local, local.Close
	}
	checks["redis"] = shared.Ping

	return cache.NewTiered(local, shared, cfg.TTL), func() {
		local.Close()
		_ = shared.Close()
	}
}
