package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/api/handlers"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/api/middleware"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/cache"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/config"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/health"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/metrics"
	repository "github.com/aaravmahajanofficial/resilient-catalog-cache/internal/repositories"
	service "github.com/aaravmahajanofficial/resilient-catalog-cache/internal/services"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(rootCtx, cfg)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Database setup (write + read routes)
	db, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	if err := db.Migrate(rootCtx); err != nil {
		slog.Error("❌ Error bootstrapping schema", "error", err.Error())
		os.Exit(1)
	}

	// Redis setup. A down cache is not fatal: the service starts degraded
	// and serves straight from the store.
	cacheHealth := cache.NewHealth()

	redisClient, err := cache.NewRedisClient(cfg, cacheHealth)
	if err != nil {
		slog.Error("❌ Invalid Redis configuration", "error", err.Error())
		os.Exit(1)
	}

	productCache := cache.NewResilientCache(redisClient, cacheHealth, &cfg.Cache)
	defer productCache.Close()

	if productCache.Ping(rootCtx) {
		slog.Info("✅ Successfully connected to Redis")
	} else {
		slog.Warn("⚠️ Redis unreachable at startup, serving without cache")
	}

	// Revalidation loop: while the flag is down, probe the backend so
	// recovery does not depend on request traffic.
	go func() {
		ticker := time.NewTicker(cfg.Cache.RetryInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if !cacheHealth.Up() && productCache.Ping(rootCtx) {
					slog.Info("✅ Redis reachable again, cache re-enabled")
				}
			}
		}
	}()

	productRepo := repository.NewProductRepo(db)
	productService := service.NewProductService(productRepo, productCache, cacheHealth, &cfg.Cache)
	productHandler := handlers.NewProductHandler(productService)
	statusHandler := handlers.NewStatusHandler(db.Read, cacheHealth)

	healthz, err := health.New(cfg)
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("GET /products", productHandler.ListProducts())
	routerMux.HandleFunc("POST /products", productHandler.CreateProduct())
	routerMux.HandleFunc("PUT /products/{id}", productHandler.UpdateProduct())
	routerMux.HandleFunc("GET /health", statusHandler.Status())
	routerMux.Handle("GET /healthz", healthz.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.HandleFunc("GET /{$}", handlers.Root())
	routerMux.HandleFunc("/", handlers.NotFound())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "resilient-catalog-cache")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-rootCtx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Trace exporter shutdown encountered an issue", slog.String("error", err.Error()))
	}

}
