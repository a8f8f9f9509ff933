package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"dealstack-api/internal/cache"
	"dealstack-api/internal/config"
	"dealstack-api/internal/database"
	"dealstack-api/internal/events"
	"dealstack-api/internal/features"
	"dealstack-api/internal/handler"
	"dealstack-api/internal/merchant"
	"dealstack-api/internal/middleware"
	"dealstack-api/internal/service"
	"dealstack-api/internal/syncer"
	"dealstack-api/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "Path to JSON config file")
	flag.Parse()

	// Best-effort .env load for local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize tracing
	_, err = tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: "dealstack-api",
		Environment: cfg.Tracing.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracing: %v", err)
		}
	}()

	// Initialize database
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Confidence cache: Redis when configured, in-process otherwise.
	var confidenceCache cache.Cache
	if cfg.Cache.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		confidenceCache = redisCache
		log.Printf("Confidence cache: redis at %s", cfg.Cache.RedisAddr)
	} else {
		confidenceCache = cache.NewInMemoryCache()
		log.Print("Confidence cache: in-memory")
	}

	// Merchant matcher tables: YAML file when configured, defaults otherwise.
	tables := merchant.DefaultTables()
	if cfg.Matcher.TablesPath != "" {
		tables, err = merchant.LoadTables(cfg.Matcher.TablesPath)
		if err != nil {
			log.Fatalf("Failed to load matcher tables: %v", err)
		}
		log.Printf("Matcher tables: %s", cfg.Matcher.TablesPath)
	}
	matcher := merchant.New(tables)

	// Feature flags
	flags := features.NewManager()
	flags.Register(features.FeatureConfidenceCache, true, "24h confidence cache per domain")
	flags.Register(features.FeatureRemoteSync, cfg.Sync.Enabled, "fire-and-forget record sync")
	flags.Register(features.FeatureSignalExtraction, true, "mine signals from posted page HTML")

	// Events: remote sync hangs off report.received, best-effort only.
	// The remote_sync flag gates each delivery, so sync can be toggled
	// at runtime as long as an endpoint is configured.
	ev := events.NewManager(true)
	if cfg.Sync.Endpoint != "" {
		ev.Subscribe(events.EventReportReceived, syncer.Hook(flags, syncer.New(cfg.Sync.Endpoint)))
		log.Printf("Remote sync: %s (enabled=%t)", cfg.Sync.Endpoint, cfg.Sync.Enabled)
	}
	defer ev.Shutdown()

	// Initialize service and handlers
	svc := service.NewService(db, confidenceCache, ev, flags, matcher)
	h := handler.NewHandlerWithOptions(svc, handler.NewHandlerOptions{
		MaxBodySize: cfg.Security.MaxRequestBodySize,
	})

	// Setup router
	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.TracingMiddleware())

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, time.Duration(cfg.RateLimit.Window)*time.Second)
		defer rateLimiter.Stop()
		r.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.Security.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	h.Routes(r)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting HTTP server on %s", addr)
	log.Printf("Database: %s", cfg.Database.Path)
	if cfg.RateLimit.Enabled {
		log.Printf("Rate limit: %d requests per %d seconds", cfg.RateLimit.Rate, cfg.RateLimit.Window)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
