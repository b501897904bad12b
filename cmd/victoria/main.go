package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/victoria/internal/api/rest"
	"github.com/fortuna/victoria/internal/api/websocket"
	"github.com/fortuna/victoria/internal/cache"
	"github.com/fortuna/victoria/internal/config"
	"github.com/fortuna/victoria/internal/publisher"
	"github.com/fortuna/victoria/internal/scheduler"
	"github.com/fortuna/victoria/internal/service"
	"github.com/fortuna/victoria/internal/store"
	"github.com/fortuna/victoria/internal/store/postgres"
)

const (
	serviceName    = "victoria"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Football League Service", serviceName, serviceVersion)

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Initialize Redis client with retry logic
	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer redisCache.Close()

	log.Println("✓ Connected to Redis")

	// Stream publisher shares the cache's client
	streamPublisher := publisher.NewRedisStreamPublisher(redisCache.Client())
	log.Println("✓ Redis stream publisher initialized")

	// Initialize WebSocket server first; the league service broadcasts
	// through it
	wsServer := websocket.NewServer()

	// Wire services over the Postgres store
	pgStore := postgres.New(db)
	leagueService := service.NewLeagueService(pgStore, redisCache, streamPublisher, wsServer)
	seasonService := service.NewSeasonService(pgStore, redisCache, streamPublisher)
	nationCallService := service.NewNationCallService(pgStore, streamPublisher)

	// Initialize scheduler/orchestrator with configuration
	schedulerConfig := &scheduler.Config{
		AdvanceInterval:    cfg.AdvanceInterval,
		EnableAutoAdvance:  cfg.AutoAdvance,
		EnableAutoRollover: cfg.AutoRollover,
		ManagerHandle:      cfg.ManagerHandle,
	}

	sched := scheduler.NewOrchestrator(pgStore, leagueService, seasonService, schedulerConfig)

	// Start scheduler in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Start(ctx)

	log.Println("✓ Scheduler started")

	// Initialize REST API server
	restServer := rest.NewServer(cfg.Port, db, leagueService, seasonService, nationCallService)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.Port)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ REST API server listening on :%s", cfg.Port)

	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.WSPort)
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ WebSocket server listening on :%s", cfg.WSPort)
	log.Printf("✓ Victoria v%s started successfully", serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.Port)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", cfg.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down Victoria gracefully...")

	// Graceful shutdown
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Println("Victoria stopped")
}
